package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/roster"
)

func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
	var lane *int
	if v := r.URL.Query().Get("lane_number"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, fmt.Errorf("%w: invalid lane_number", errBadRequest))
			return
		}
		lane = &n
	}
	ps, err := s.Roster.List(r.Context(), codeFrom(r), lane)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// addParticipant serves both the host route and lane self-registration; the
// actor set by the auth middleware decides which rules apply.
func (s *Server) addParticipant(w http.ResponseWriter, r *http.Request) {
	var in roster.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	p, err := s.Roster.Add(r.Context(), code, actorFrom(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publishRefresh(code)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "participantID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in roster.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	p, err := s.Roster.Update(r.Context(), code, actorFrom(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publishRefresh(code)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "participantID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	if err := s.Roster.Delete(r.Context(), code, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publishRefresh(code)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) publicSettings(w http.ResponseWriter, r *http.Request) {
	allowed, err := s.Roster.SelfRegistration(r.Context(), codeFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{domain.PropAllowAddParticipant: allowed})
}
