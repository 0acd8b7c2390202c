package http

import (
	"net/http"

	"lifedash/internal/core"
	"lifedash/internal/log"
	"lifedash/internal/services"
	"lifedash/internal/view"
)

type transactionsResponse struct {
	services.FinanceListing
	Columns []view.Column `json:"columns"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := transactionFilter(q)
	if err := validateMonth(f.Month); err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}

	listing, err := s.svc.Finance.List(r.Context(), f)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	cols := view.Hide(view.TransactionColumns, q.Get("hide"))
	NewResponse().JSON(transactionsResponse{FinanceListing: listing, Columns: cols.Visible()}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, err := ParseBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}
	amount, err := p.Decimal("amount", false)
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	tx, err := s.svc.Finance.Create(r.Context(), core.TransactionDraft{
		Type:        core.TransactionType(p.First("type", "transactionType")),
		Amount:      amount,
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        p.Get("date"),
	})
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		TriggerChanged(services.DomainFinance, tx.SerialNo).
		TriggerSuccessNotification("Transaction saved").
		JSON(tx).
		Write(w)
}
