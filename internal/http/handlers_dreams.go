package http

import (
	"net/http"

	"lifedash/internal/core"
	"lifedash/internal/log"
	"lifedash/internal/services"
	"lifedash/internal/view"
)

type dreamsResponse struct {
	services.DreamListing
	Columns []view.Column `json:"columns"`
}

func (s *Server) handleListDreams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := s.svc.Dreams.List(r.Context(), dreamFilter(q))
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	cols := view.Hide(view.DreamColumns, q.Get("hide"))
	NewResponse().JSON(dreamsResponse{DreamListing: listing, Columns: cols.Visible()}).Write(w)
}

func (s *Server) handleDreamProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.svc.Dreams.Progress(r.Context(), r.PathValue("dreamID"))
	if err != nil {
		s.fail(w, r, log.OpFetch, err)
		return
	}
	NewResponse().JSON(progress).Write(w)
}

func (s *Server) handleCreateDream(w http.ResponseWriter, r *http.Request) {
	p, err := ParseBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}
	cost, err := p.Decimal("totalCost", false)
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	dream, err := s.svc.Dreams.Create(r.Context(), core.DreamDraft{
		Name:        p.First("dreamName", "name"),
		TotalCost:   cost,
		StartDate:   p.Get("startDate"),
		EndDate:     p.Get("endDate"),
		Description: p.Get("description"),
	})
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		TriggerChanged(services.DomainDream, dream.DreamID).
		TriggerSuccessNotification("Dream saved").
		JSON(dream).
		Write(w)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
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

	c, err := s.svc.Dreams.Contribute(r.Context(), core.ContributionDraft{
		DreamID:   r.PathValue("dreamID"),
		DreamName: p.Get("dreamName"),
		Amount:    amount,
		Remarks:   p.Get("remarks"),
	})
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		TriggerChanged(services.DomainContribution, c.SerialNo).
		TriggerSuccessNotification("Contribution added").
		JSON(c).
		Write(w)
}
