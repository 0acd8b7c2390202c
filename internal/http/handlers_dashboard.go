package http

import (
	"net/http"

	"lifedash/internal/log"
	"lifedash/internal/storage"
)

const maxWritesLimit = 500

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Dashboard.Summary(r.Context())
	if err != nil {
		s.fail(w, r, log.OpFetch, err)
		return
	}
	NewResponse().JSON(view).Write(w)
}

// handleWrites lists journaled writes, newest first.
func (s *Server) handleWrites(w http.ResponseWriter, r *http.Request) {
	if s.opts.Journal == nil {
		NotFoundError("The write journal is not enabled").Write(w)
		return
	}
	q := r.URL.Query()
	limit := queryInt(q, "limit", 100)
	if limit < 1 || limit > maxWritesLimit {
		s.fail(w, r, log.OpList, badRequestf("limit must be between 1 and %d", maxWritesLimit))
		return
	}

	events, err := s.opts.Journal.List(r.Context(), storage.ListFilter{
		Domain: sanitizeInput(q.Get("domain")),
		State:  sanitizeInput(q.Get("state")),
		Limit:  limit,
	})
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	NewResponse().JSON(map[string]any{"writes": events}).Write(w)
}
