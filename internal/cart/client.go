package cart

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

	"StoreFront/internal/catalog"
)

// Line is one product held in the cart. IDs are assigned server-side
// and opaque to the client.
type Line struct {
	ID       string          `json:"id"`
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrBadStatus    = errors.New("cart api bad status")
	ErrUnavailable  = errors.New("cart api unavailable")
)

// Client talks to the authoritative cart on the server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if hc == nil {
		hc = &http.Client{Timeout: 3 * time.Second}
	}
	return &Client{BaseURL: baseURL, HTTP: hc}
}

func (c *Client) ListLines(ctx context.Context) ([]Line, error) {
	var lines []Line
	if err := c.do(ctx, http.MethodGet, "/api/carts/customer/cart-items/", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Client) AddLine(ctx context.Context, productID string, quantity int) (Line, error) {
	body := map[string]any{"product": productID, "quantity": quantity}
	var ln Line
	if err := c.do(ctx, http.MethodPost, "/api/carts/cart-items/add/", body, &ln); err != nil {
		return Line{}, err
	}
	return ln, nil
}

// UpdateLine sets the quantity of an existing line and returns the
// quantity the server settled on.
func (c *Client) UpdateLine(ctx context.Context, lineID string, quantity int) (int, error) {
	path := fmt.Sprintf("/api/carts/cart-item/%s/update/", url.PathEscape(lineID))
	body := map[string]any{"quantity": quantity}

	var out struct {
		Quantity int `json:"quantity"`
	}
	if err := c.do(ctx, http.MethodPut, path, body, &out); err != nil {
		return 0, err
	}
	return out.Quantity, nil
}

func (c *Client) DeleteLine(ctx context.Context, lineID string) error {
	path := fmt.Sprintf("/api/carts/cart-item/%s/delete/", url.PathEscape(lineID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrLineNotFound
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
