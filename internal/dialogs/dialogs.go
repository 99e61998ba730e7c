// Package dialogs models the rename-list and edit-task dialogs: controlled
// fields seeded from their target, a save that is disabled while the input is
// blank or a save is already in flight, and a cancel that discards edits.
package dialogs

import "errors"

// KeyEnter is the key that submits a dialog.
const KeyEnter = "Enter"

// ErrSaveInFlight is returned when Save is called while an earlier save from
// the same dialog has not finished.
var ErrSaveInFlight = errors.New("save already in progress")
