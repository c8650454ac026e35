package backend

import (
	"context"
	"net/url"

	"github.com/insightdelivered/statement-desk/internal/models"
)

// TriggerClassification asks the backend to classify pending transactions.
// The response body is ignored.
func (c *Client) TriggerClassification(ctx context.Context) error {
	return c.doJSON(ctx, "GET", "/classify-transactions", nil, nil)
}

func (c *Client) GetClassification(ctx context.Context, accountID string) (models.Classification, error) {
	var out models.Classification
	err := c.doJSON(ctx, "GET", "/classify-transactions/"+url.PathEscape(accountID), nil, &out)
	return out, err
}
