package http

import (
	"net/http"

	"lifedash/internal/core"
	"lifedash/internal/log"
	"lifedash/internal/services"
	"lifedash/internal/view"
)

type fuelResponse struct {
	services.FuelListing
	Columns []view.Column `json:"columns"`
}

func (s *Server) handleListFuel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := s.svc.Fuel.List(r.Context(), fuelFilter(q))
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	cols := view.Hide(view.FuelColumns, q.Get("hide"))
	NewResponse().JSON(fuelResponse{FuelListing: listing, Columns: cols.Visible()}).Write(w)
}

func (s *Server) handleCreateFuel(w http.ResponseWriter, r *http.Request) {
	p, err := ParseBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	draft := core.FuelDraft{VehicleType: core.VehicleType(p.First("vehicleType", "vehicle"))}
	if draft.Price, err = p.Decimal("price", false); err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}
	if draft.MeterNo, err = p.Decimal("meterNo", true); err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}
	if draft.Liter, err = p.Decimal("liter", false); err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	entry, err := s.svc.Fuel.Create(r.Context(), draft)
	if err != nil {
		s.fail(w, r, log.OpInsert, err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		TriggerChanged(services.DomainFuel, entry.SerialNo).
		TriggerSuccessNotification("Fuel entry saved").
		JSON(entry).
		Write(w)
}
