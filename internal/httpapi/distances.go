package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/lane-scoring-backend/internal/lifecycle"
	wire "github.com/DoyleJ11/lane-scoring-backend/pkg/types"
)

func (s *Server) listDistances(w http.ResponseWriter, r *http.Request) {
	ds, err := s.Lifecycle.Distances(r.Context(), codeFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) createDistance(w http.ResponseWriter, r *http.Request) {
	var req createDistanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	d, err := s.Lifecycle.AddDistance(r.Context(), code, lifecycle.NewDistance{Title: req.Title, ShotsCount: req.ShotsCount})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publishRefresh(code)
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDistance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "distanceID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateDistanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	d, err := s.Lifecycle.UpdateDistance(r.Context(), code, id, req.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Status != nil {
		s.publish(code, wire.DistanceUpdate{DistanceID: d.ID, Status: string(d.Status)})
		ev, err := s.Lifecycle.Event(r.Context(), code)
		if err == nil {
			s.publishEventStatus(r.Context(), code, ev)
		}
	} else {
		s.publishRefresh(code)
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDistance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "distanceID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	if err := s.Lifecycle.DeleteDistance(r.Context(), code, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publishRefresh(code)
	w.WriteHeader(http.StatusNoContent)
}
