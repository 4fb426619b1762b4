package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientListLines(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/carts/customer/cart-items/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"l1","product":{"id":"p1","name":"Keyboard","price":"49.90","stock":4},"quantity":2},
			{"id":"l2","product":{"id":"p2","name":"Mouse","price":"19.90","stock":9},"quantity":1}
		]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	lines, err := c.ListLines(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("len = %d, want 2", len(lines))
	}
	if lines[0].ID != "l1" || lines[0].Product.Price != "49.90" || lines[0].Quantity != 2 {
		t.Fatalf("line = %+v", lines[0])
	}
}

func TestClientAddLine(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/carts/cart-items/add/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Product  string `json:"product"`
			Quantity int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Product != "p1" || body.Quantity != 1 {
			t.Fatalf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"l9","product":{"id":"p1","name":"Keyboard","price":"49.90","stock":4},"quantity":1}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	ln, err := c.AddLine(context.Background(), "p1", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if ln.ID != "l9" || ln.Quantity != 1 {
		t.Fatalf("line = %+v", ln)
	}
}

func TestClientUpdateLine(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/carts/cart-item/l1/update/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quantity":7}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	got, err := c.UpdateLine(context.Background(), "l1", 7)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != 7 {
		t.Fatalf("quantity = %d, want 7", got)
	}
}

func TestClientDeleteLine(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/carts/cart-item/l1/delete/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	if err := c.DeleteLine(context.Background(), "l1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestClientDeleteLineNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	err := c.DeleteLine(context.Background(), "l1")
	if !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("err = %v, want ErrLineNotFound", err)
	}
}

func TestClientBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil)
	_, err := c.ListLines(context.Background())
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("err = %v, want ErrBadStatus", err)
	}
}

func TestClientUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	c := NewClient(ts.URL, nil)
	_, err := c.ListLines(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
