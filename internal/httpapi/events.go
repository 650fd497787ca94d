package httpapi

import (
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"

	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"go.uber.org/zap"
)

const (
	codeLength   = 6
	codeAttempts = 8
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// createEvent creates the event named in the body, or one under a fresh
// random code when none is given.
func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Code != "" {
		ev, err := s.Lifecycle.CreateEvent(r.Context(), req.Code, req.ShotsCount)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ev)
		return
	}

	for i := 0; i < codeAttempts; i++ {
		c, err := GenerateCode()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ev, err := s.Lifecycle.CreateEvent(r.Context(), c, req.ShotsCount)
		if errors.Is(err, store.ErrEventExists) {
			s.Log.Debug("collision on code, regenerating", zap.String("code", c))
			continue
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ev)
		return
	}
	s.writeError(w, r, errors.New("could not allocate an event code"))
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.Lifecycle.Event(r.Context(), codeFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := codeFrom(r)
	ev, err := s.Lifecycle.UpdateEvent(r.Context(), code, req.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Status != nil {
		s.publishEventStatus(r.Context(), code, ev)
	} else {
		s.publishRefresh(code)
	}
	writeJSON(w, http.StatusOK, ev)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

