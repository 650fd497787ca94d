package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/lane-scoring-backend/internal/results"
)

type saveResponse struct {
	Saved int `json:"saved"`
}

func (s *Server) saveResults(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	n, err := s.Results.Save(r.Context(), code, actorFrom(r), req.Results)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publishTotals(r.Context(), code, participantsOf(req.Results))
	writeJSON(w, http.StatusOK, saveResponse{Saved: n})
}

func participantsOf(shots []results.Shot) []uint {
	seen := map[uint]bool{}
	var out []uint
	for _, sh := range shots {
		if !seen[sh.ParticipantID] {
			seen[sh.ParticipantID] = true
			out = append(out, sh.ParticipantID)
		}
	}
	return out
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := s.Leaderboard.Compute(r.Context(), codeFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (s *Server) participantResults(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "participantID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := s.Results.ParticipantState(r.Context(), codeFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) resetResults(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "participantID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	n, err := s.Results.Reset(r.Context(), code, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publishRefresh(code)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *Server) distanceSheet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "distanceID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := s.Results.DistanceSheet(r.Context(), codeFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}
