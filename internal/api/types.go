package api

import (
	"time"

	"github.com/gravitrone/labproto/cli/internal/blocks"
)

// --- Protocol ---

// Protocol is a lab protocol record. ID is nil until the server creates it.
type Protocol struct {
	ID          *int64              `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	Blocks      []blocks.Definition `json:"blocks" yaml:"blocks"`
	CreatedBy   string              `json:"created_by,omitempty" yaml:"-"`
	CreatedOn   *time.Time          `json:"created_on,omitempty" yaml:"-"`
	UpdatedOn   *time.Time          `json:"updated_on,omitempty" yaml:"-"`
}

// HasID reports whether the server has assigned an id.
func (p Protocol) HasID() bool {
	return p.ID != nil
}

// IDValue returns the id, or 0 when unset.
func (p Protocol) IDValue() int64 {
	if p.ID == nil {
		return 0
	}
	return *p.ID
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// --- Run / Sample ---

// Run is an execution of a protocol version.
type Run struct {
	ID         *int64 `json:"id,omitempty"`
	Name       string `json:"name"`
	Notes      string `json:"notes,omitempty"`
	DataLink   string `json:"data_link,omitempty"`
	ProtocolID *int64 `json:"protocol_id,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
}

// Sample is a well-level sample recorded by a run.
type Sample struct {
	SampleID   string `json:"sample_id"`
	PlateID    string `json:"plate_id,omitempty"`
	PlateRow   int    `json:"plate_row,omitempty"`
	PlateCol   int    `json:"plate_col,omitempty"`
	RunID      *int64 `json:"run_id,omitempty"`
	ProtocolID *int64 `json:"protocol_id,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
}

// SearchResults is the /search response body.
type SearchResults struct {
	Protocols []Protocol `json:"protocols"`
	Runs      []Run      `json:"runs"`
	Samples   []Sample   `json:"samples"`
}

// --- Query ---

// QueryParams is a map of URL query parameters.
type QueryParams map[string]string
