package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SessionHeader carries the session token on authenticated requests.
const SessionHeader = "X-Session-ID"

type ctxKey int

const (
	codeKey ctxKey = iota
	actorKey
)

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// withCode normalizes the {code} parameter and stores it on the context.
func (s *Server) withCode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, err := s.codeParam(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), codeKey, code)))
	})
}

func (s *Server) hostOnly(next http.Handler) http.Handler {
	return s.withCode(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.authorize(w, r, domain.Host(), next)
	}))
}

func (s *Server) laneOnly(next http.Handler) http.Handler {
	return s.withCode(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lane, err := laneParam(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.authorize(w, r, domain.Lane(lane), next)
	}))
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request, id domain.Identity, next http.Handler) {
	code := codeFrom(r)
	if err := s.Sessions.Require(r.Context(), code, id, r.Header.Get(SessionHeader)); err != nil {
		s.writeError(w, r, err)
		return
	}
	next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, id)))
}

func codeFrom(r *http.Request) string {
	code, _ := r.Context().Value(codeKey).(string)
	return code
}

func actorFrom(r *http.Request) domain.Identity {
	id, _ := r.Context().Value(actorKey).(domain.Identity)
	return id
}
