package cliclient

import (
	"context"
	"net/http"
	"net/url"
)

// Ping checks that the service answers.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var resp MessageResponse
	if _, err := c.request(ctx, http.MethodGet, "/"+c.kind.Singular+"/ping", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Create adds a record and returns the service's confirmation message.
func (c *Client) Create(ctx context.Context, req CreateRequest) (string, error) {
	var resp MessageResponse
	if _, err := c.request(ctx, http.MethodPost, "/"+c.kind.Plural, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Get returns the record with the given id.
func (c *Client) Get(ctx context.Context, id string) (*Record, error) {
	var resp recordResponse
	if _, err := c.request(ctx, http.MethodGet, "/"+c.kind.Plural+"/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// List returns every record in creation order.
func (c *Client) List(ctx context.Context) ([]Record, error) {
	var resp listResponse
	if _, err := c.request(ctx, http.MethodGet, "/"+c.kind.Plural, nil, &resp); err != nil {
		return nil, err
	}
	records := resp.Data[c.kind.Plural]
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Info returns the service's identity and version.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if _, err := c.request(ctx, http.MethodGet, "/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
