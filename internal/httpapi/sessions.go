package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/session"
	wire "github.com/DoyleJ11/lane-scoring-backend/pkg/types"
)

// login returns a handler authenticating as the identity chosen by pick.
// The token may come in the body or the session header.
func (s *Server) login(pick func(r *http.Request) (domain.Identity, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pick(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req loginRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		token := req.SessionID
		if token == "" {
			token = r.Header.Get(SessionHeader)
		}
		g, err := s.Sessions.Login(r.Context(), codeFrom(r), id, session.Credentials{Password: req.Password, Token: token})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func fixed(id domain.Identity) func(*http.Request) (domain.Identity, error) {
	return func(*http.Request) (domain.Identity, error) { return id, nil }
}

func laneIdentity(r *http.Request) (domain.Identity, error) {
	n, err := laneParam(r)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Lane(n), nil
}

func (s *Server) laneSessions(w http.ResponseWriter, r *http.Request) {
	lanes, err := s.Sessions.Lanes(r.Context(), codeFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"lanes": lanes})
}

func (s *Server) revokeLane(w http.ResponseWriter, r *http.Request) {
	lane, err := laneParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	deleted, err := s.Sessions.Revoke(r.Context(), code, lane)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if deleted {
		s.publish(code, wire.LaneSessionReset{LaneNumber: lane})
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.Sessions.Settings(r.Context(), codeFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	st, err := s.Sessions.UpdateSettings(r.Context(), code, req.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ClientAllowAddParticipant != nil {
		s.publishRefresh(code)
	}
	writeJSON(w, http.StatusOK, st)
}
