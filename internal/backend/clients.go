package backend

import (
	"context"
	"net/url"

	"github.com/insightdelivered/statement-desk/internal/models"
)

func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	if err := c.doJSON(ctx, "GET", "/client", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateClient(ctx context.Context, in models.Client) (Result, error) {
	in.ID = ""
	var out Result
	err := c.doJSON(ctx, "POST", "/add-client", in, &out)
	return out, err
}

func (c *Client) UpdateClient(ctx context.Context, id string, in models.Client) (Result, error) {
	var out Result
	err := c.doJSON(ctx, "PUT", "/update-client/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteClient(ctx context.Context, id string) (Result, error) {
	var out Result
	err := c.doJSON(ctx, "DELETE", "/delete/"+url.PathEscape(id), nil, &out)
	return out, err
}
