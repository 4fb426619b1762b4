package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StoreFront/pkg/kit"
)

type Server struct {
	Store *Store
	Log   *zap.Logger
}

// snapshot is what the UI renders: the collection plus every derived
// and alert surface in one response.
type snapshot struct {
	Lines     []Line            `json:"lines"`
	LineCount int               `json:"line_count"`
	Subtotal  string            `json:"subtotal"`
	Alerts    map[string]string `json:"alerts,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func (s *Server) SnapshotHandler() http.HandlerFunc  { return s.getSnapshot }
func (s *Server) RefreshHandler() http.HandlerFunc   { return s.refresh }
func (s *Server) AddHandler() http.HandlerFunc       { return s.add }
func (s *Server) IncrementHandler() http.HandlerFunc { return s.increment }
func (s *Server) DecrementHandler() http.HandlerFunc { return s.decrement }
func (s *Server) DeleteHandler() http.HandlerFunc    { return s.deleteLine }

func (s *Server) view() snapshot {
	lines := s.Store.Lines()
	if lines == nil {
		lines = []Line{}
	}
	return snapshot{
		Lines:     lines,
		LineCount: s.Store.LineCount(),
		Subtotal:  s.Store.Subtotal(),
		Alerts:    s.Store.Alerts(),
		Error:     s.Store.LastError(),
	}
}

func (s *Server) getSnapshot(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context) error {
		return s.Store.Fetch(ctx)
	})
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "productID")
	if pid == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product id required")
		return
	}
	s.run(w, r, func(ctx context.Context) error {
		return s.Store.Add(ctx, pid)
	})
}

func (s *Server) increment(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "productID")
	if pid == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product id required")
		return
	}
	s.run(w, r, func(ctx context.Context) error {
		return s.Store.Increment(ctx, pid)
	})
}

func (s *Server) decrement(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "productID")
	if pid == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product id required")
		return
	}
	s.run(w, r, func(ctx context.Context) error {
		return s.Store.Decrement(ctx, pid)
	})
}

func (s *Server) deleteLine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "lineID")
	if id == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "line id required")
		return
	}
	s.run(w, r, func(ctx context.Context) error {
		return s.Store.DeleteLine(ctx, id)
	})
}

// run executes a store operation and answers with the fresh snapshot.
// Remote failures were already folded into the store's error state;
// the snapshot carries them, the status code just flags the failure.
func (s *Server) run(w http.ResponseWriter, r *http.Request, op func(context.Context) error) {
	if err := op(r.Context()); err != nil {
		if s.Log != nil {
			s.Log.Warn("cart operation failed", zap.Error(err))
		}
		kit.WriteJSON(w, http.StatusBadGateway, s.view())
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.view())
}
