package dto

import "encoding/json"

// Nullable records whether a JSON key was present and whether it was null.
type Nullable[T any] struct {
	Present bool
	Value   *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Present = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
