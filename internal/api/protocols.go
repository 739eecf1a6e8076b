package api

import (
	"context"
	"fmt"
	"net/http"
)

// ProtocolsPath is the collection resource. POST here creates a protocol.
const ProtocolsPath = "/protocol"

// ProtocolPath is the resource for one protocol id.
func ProtocolPath(id int64) string {
	return fmt.Sprintf("%s/%d", ProtocolsPath, id)
}

// --- Protocol Methods ---

func (c *Client) CreateProtocol(ctx context.Context, p Protocol) (*Protocol, error) {
	var out Protocol
	if err := c.call(ctx, http.MethodPost, ProtocolsPath, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProtocol(ctx context.Context, id int64) (*Protocol, error) {
	var out Protocol
	if err := c.call(ctx, http.MethodGet, ProtocolPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QueryProtocols(ctx context.Context, params QueryParams) ([]Protocol, error) {
	var out []Protocol
	if err := c.call(ctx, http.MethodGet, buildQuery(ProtocolsPath, params), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateProtocol(ctx context.Context, id int64, p Protocol) (*Protocol, error) {
	var out Protocol
	if err := c.call(ctx, http.MethodPut, ProtocolPath(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertProtocol sends p with the given verb and path and returns the
// server's canonical record. Callers choose POST on the collection for a
// create and PUT on the item for an update.
func (c *Client) UpsertProtocol(ctx context.Context, method, path string, p Protocol) (*Protocol, error) {
	switch method {
	case http.MethodPost, http.MethodPut:
	default:
		return nil, fmt.Errorf("upsert protocol: unsupported method %s", method)
	}
	var out Protocol
	if err := c.call(ctx, method, path, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
