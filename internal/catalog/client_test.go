package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientProduct(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/products/p1/retrieve/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"p1","name":"Keyboard","price":"49.90","stock":4,
			"images":[{"image":"/media/p1.jpg"}]
		}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	p, err := c.Product(context.Background(), "p1")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if p.ID != "p1" || p.Name != "Keyboard" || p.Price != "49.90" || p.Stock != 4 {
		t.Fatalf("product = %+v", p)
	}
	if len(p.Images) != 1 || p.Images[0].URL != "/media/p1.jpg" {
		t.Fatalf("images = %+v", p.Images)
	}
}

func TestClientStock(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","stock":7}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	n, err := c.Stock(context.Background(), "p1")
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	if n != 7 {
		t.Fatalf("stock = %d, want 7", n)
	}
}

func TestClientStockNegativeFloorsAtZero(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","stock":-3}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	n, err := c.Stock(context.Background(), "p1")
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	if n != 0 {
		t.Fatalf("stock = %d, want 0", n)
	}
}

func TestClientProductNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	_, err := c.Product(context.Background(), "nope")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestClientBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	_, err := c.Stock(context.Background(), "p1")
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("err = %v, want ErrBadStatus", err)
	}
}

func TestClientUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	c := NewClient(ts.URL, nil)
	_, err := c.Stock(context.Background(), "p1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
