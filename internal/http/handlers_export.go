package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"lifedash/internal/export"
	"lifedash/internal/log"
	"lifedash/internal/view"
)

// writeCSV sends nothing until render succeeds.
func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, domain string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	name := export.Filename(domain, time.Now())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	log.FromContext(r.Context()).InfoContext(r.Context(), "Export written",
		log.FieldOperation, log.OpExport, log.FieldDomain, domain, "bytes", buf.Len())
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := transactionFilter(q)
	if err := validateMonth(f.Month); err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	listing, err := s.svc.Finance.List(r.Context(), f)
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	cols := view.Hide(view.TransactionColumns, q.Get("hide"))
	s.writeCSV(w, r, export.DomainTransactions, func(buf *bytes.Buffer) error {
		return export.Transactions(buf, listing.Transactions, cols)
	})
}

func (s *Server) handleExportFuel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := s.svc.Fuel.List(r.Context(), fuelFilter(q))
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	cols := view.Hide(view.FuelColumns, q.Get("hide"))
	s.writeCSV(w, r, export.DomainFuel, func(buf *bytes.Buffer) error {
		return export.Fuel(buf, listing.Entries, cols)
	})
}

func (s *Server) handleExportDreams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := s.svc.Dreams.List(r.Context(), dreamFilter(q))
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	cols := view.Hide(view.DreamColumns, q.Get("hide"))
	s.writeCSV(w, r, export.DomainDreams, func(buf *bytes.Buffer) error {
		return export.Dreams(buf, listing.Dreams, listing.Saved, cols)
	})
}
