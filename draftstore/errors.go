package draftstore

import "errors"

var (
	// ErrNotFound indicates no draft is stored under the given name.
	ErrNotFound = errors.New("draftstore: draft not found")

	// ErrDuplicate indicates a draft with this name already exists.
	ErrDuplicate = errors.New("draftstore: duplicate draft")

	// ErrEmptyName indicates an empty draft name.
	ErrEmptyName = errors.New("draftstore: empty draft name")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("draftstore: required parameter is nil")
)
