package dialogs

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type ListTarget struct {
	ID    uuid.UUID
	Title string
}

// RenameFunc persists a new list title.
type RenameFunc func(ctx context.Context, id uuid.UUID, title string) error

type Rename struct {
	mu     sync.Mutex
	open   bool
	target *ListTarget
	title  string
	saving bool
}

func NewRename() *Rename {
	return &Rename{}
}

// Open shows the dialog for target and reseeds the title field.
func (d *Rename) Open(target ListTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.target = &target
	d.reseed()
}

// SetTarget swaps the target; the title field is reseeded even while open.
func (d *Rename) SetTarget(target *ListTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if target != nil {
		t := *target
		target = &t
	}
	d.target = target
	d.reseed()
}

// SetOpen shows or hides the dialog. Closing is refused while saving.
func (d *Rename) SetOpen(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !open && d.saving {
		return
	}
	d.open = open
	d.reseed()
}

func (d *Rename) reseed() {
	if d.target == nil {
		d.title = ""
		return
	}
	d.title = d.target.Title
}

func (d *Rename) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

func (d *Rename) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

func (d *Rename) Target() (ListTarget, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.target == nil {
		return ListTarget{}, false
	}
	return *d.target, true
}

func (d *Rename) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Rename) Saving() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saving
}

// CanSave reports whether the Save button is enabled.
func (d *Rename) CanSave() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canSave()
}

func (d *Rename) canSave() bool {
	return d.target != nil && !d.saving && strings.TrimSpace(d.title) != ""
}

// Save calls fn with the trimmed title. It is a no-op while the title is
// blank or there is no target. The dialog closes when fn succeeds.
func (d *Rename) Save(ctx context.Context, fn RenameFunc) error {
	d.mu.Lock()
	if d.saving {
		d.mu.Unlock()
		return ErrSaveInFlight
	}
	if !d.canSave() {
		d.mu.Unlock()
		return nil
	}
	d.saving = true
	id, title := d.target.ID, strings.TrimSpace(d.title)
	d.mu.Unlock()

	err := fn(ctx, id, title)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.saving = false
	if err == nil {
		d.open = false
		if d.target != nil && d.target.ID == id {
			d.target.Title = title
		}
		d.reseed()
	}
	return err
}

// KeyPress submits on Enter and ignores every other key.
func (d *Rename) KeyPress(ctx context.Context, key string, fn RenameFunc) error {
	if key != KeyEnter {
		return nil
	}
	return d.Save(ctx, fn)
}

// Cancel closes the dialog without saving.
func (d *Rename) Cancel() {
	d.SetOpen(false)
}
