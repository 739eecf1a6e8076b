// Package editor layers unsaved local edits over the cached server copy of
// a protocol and submits them back to the server.
//
// Pending holds one nullable slot per editable field. A nil slot means the
// user has not touched that field since the editor was created, so the
// displayed value falls through to the cached record, then to a default.
package editor

import (
	"github.com/gravitrone/labproto/cli/internal/blocks"
	"github.com/gravitrone/labproto/cli/internal/richtext"
)

// Pending is the set of fields the user has edited since load.
type Pending struct {
	Name        *string
	Description *richtext.Document
	Blocks      *[]blocks.Definition
}

// Touched reports whether any field has a local edit.
func (p Pending) Touched() bool {
	return p.Name != nil || p.Description != nil || p.Blocks != nil
}

// Resolve picks the displayed value of one field.
func Resolve[T any](pending, remote *T, def T) T {
	if pending != nil {
		return *pending
	}
	if remote != nil {
		return *remote
	}
	return def
}
