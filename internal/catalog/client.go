package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Image struct {
	URL string `json:"image"`
}

// Product is the catalog snapshot held by cart lines. The cart engine
// never rewrites anything here except the cached Stock field.
type Product struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Price  string  `json:"price"`
	Stock  int     `json:"stock"`
	Images []Image `json:"images,omitempty"`
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBadStatus       = errors.New("catalog bad status")
	ErrUnavailable     = errors.New("catalog unavailable")
)

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

func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	u := fmt.Sprintf("%s/api/products/%s/retrieve/", c.BaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Product{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Timeouts and refused connections alike: the catalog is not
		// answering, which callers must treat as unknown stock.
		return Product{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Product{}, ErrProductNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Product{}, fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Stock reports the current available quantity for a product. The
// error is surfaced so reconciliation can tell "unreachable" apart
// from a true zero; mutating paths map any error to zero instead.
func (c *Client) Stock(ctx context.Context, productID string) (int, error) {
	p, err := c.Product(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p.Stock < 0 {
		return 0, nil
	}
	return p.Stock, nil
}
