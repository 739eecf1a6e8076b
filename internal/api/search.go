package api

import (
	"context"
	"net/http"
	"strconv"
)

// SearchFilter narrows /search results. Zero values are omitted; all set
// filters are intersected by the server.
type SearchFilter struct {
	Protocol int64
	Run      int64
	Plate    string
	Reagent  string
	Sample   string
	Creator  string
	Archived bool
	Page     int
	PerPage  int
}

func (f SearchFilter) params() QueryParams {
	params := QueryParams{
		"plate":   f.Plate,
		"reagent": f.Reagent,
		"sample":  f.Sample,
		"creator": f.Creator,
	}
	if f.Protocol > 0 {
		params["protocol"] = strconv.FormatInt(f.Protocol, 10)
	}
	if f.Run > 0 {
		params["run"] = strconv.FormatInt(f.Run, 10)
	}
	if f.Archived {
		params["archived"] = "true"
	}
	if f.Page > 0 {
		params["page"] = strconv.Itoa(f.Page)
	}
	if f.PerPage > 0 {
		params["per_page"] = strconv.Itoa(f.PerPage)
	}
	return params
}

// Search queries protocols, runs and samples matching every set filter.
func (c *Client) Search(ctx context.Context, filter SearchFilter) (*SearchResults, error) {
	var out SearchResults
	if err := c.call(ctx, http.MethodGet, buildQuery("/search", filter.params()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
