package models

import "encoding/json"

// OptionalID distinguishes an absent reference from an explicit null in
// partial updates.
type OptionalID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON marks the field as supplied; null clears the reference.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// SetID returns a supplied OptionalID pointing at id.
func SetID(id int64) OptionalID {
	return OptionalID{Set: true, Value: &id}
}
