// Package apiclient talks to the intake HTTP API on behalf of the terminal client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Code)
	}
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
}

type Client struct {
	base  string
	http  *http.Client
	token string
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// Token returns the admin token from the last successful Check.
func (c *Client) Token() string { return c.token }

// Publish posts a submission document to /api/submit.
func (c *Client) Publish(ctx context.Context, s domain.Submission) error {
	return c.do(ctx, http.MethodPost, "/api/submit", s, nil)
}

// ListAll fetches every stored document, newest first.
func (c *Client) ListAll(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.do(ctx, http.MethodGet, "/api/all-forms", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Check validates an admin code against the server. A 401 is a plain
// mismatch, not an error.
func (c *Client) Check(ctx context.Context, code string) (bool, error) {
	var out struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin-login", map[string]string{"code": code}, &out)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out.Success {
		c.token = out.Token
	}
	return out.Success, nil
}

// Delete removes a stored document. It needs the token from a successful Check.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/forms/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		msg := e.Error
		if msg == "" {
			msg = e.Message
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
