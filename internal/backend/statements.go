package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/url"

	"github.com/insightdelivered/statement-desk/internal/models"
)

type statementList struct {
	Data []models.Statement `json:"data"`
}

type statementOne struct {
	Data models.Statement `json:"data"`
}

func (c *Client) ListStatements(ctx context.Context) ([]models.Statement, error) {
	var out statementList
	if err := c.doJSON(ctx, "GET", "/bank-statements", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetStatement(ctx context.Context, accountID string) (models.Statement, error) {
	var out statementOne
	err := c.doJSON(ctx, "GET", "/bank-statements/"+url.PathEscape(accountID), nil, &out)
	return out.Data, err
}

// PutStatement replaces the stored statement with s.
func (c *Client) PutStatement(ctx context.Context, accountID string, s models.Statement) error {
	return c.doJSON(ctx, "PUT", "/bank-statements/"+url.PathEscape(accountID), s, nil)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) (Result, error) {
	var out Result
	err := c.doJSON(ctx, "DELETE", "/transactions/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Upload is a statement PDF submitted for processing on behalf of a client.
type Upload struct {
	AccessCode     string
	ClientName     string
	ClientID       string
	MonthReference string
	FileName       string
	PDF            []byte
}

// Processed is the response to a processed upload. Raw keeps the full body.
type Processed struct {
	DatabaseOperation struct {
		Message string `json:"message"`
	} `json:"databaseOperation"`
	Raw json.RawMessage `json:"-"`
}

// ProcessStatement uploads a PDF as multipart form data.
func (c *Client) ProcessStatement(ctx context.Context, u Upload) (Processed, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"accessCode", u.AccessCode},
		{"clientName", u.ClientName},
		{"id", u.ClientID},
		{"monthReference", u.MonthReference},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return Processed{}, fmt.Errorf("multipart %s: %w", f[0], err)
		}
	}
	fw, err := mw.CreateFormFile("pdfFile", u.FileName)
	if err != nil {
		return Processed{}, fmt.Errorf("multipart pdfFile: %w", err)
	}
	if _, err := fw.Write(u.PDF); err != nil {
		return Processed{}, fmt.Errorf("multipart pdfFile: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Processed{}, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, "POST", "/process-statement", mw.FormDataContentType(), &buf, &raw); err != nil {
		return Processed{}, err
	}
	var out Processed
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return Processed{}, fmt.Errorf("decode process-statement: %w", err)
		}
	}
	out.Raw = raw
	return out, nil
}
