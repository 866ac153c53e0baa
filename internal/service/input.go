package service

import (
	"bytes"
	"encoding/json"
)

// Field is a payload value that remembers whether it was sent, and whether it was sent as null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Value builds a Field that was sent with v.
func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// TaskInput is the writable part of a task payload. Fields like id, owner or
// timestamps are not part of it and are dropped when decoding.
type TaskInput struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	Priority    Field[string] `json:"priority"`
	IsCompleted Field[bool]   `json:"is_completed"`
}
