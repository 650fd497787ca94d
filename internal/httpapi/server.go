package httpapi

import (
	"context"

	"github.com/DoyleJ11/lane-scoring-backend/internal/hub"
	"github.com/DoyleJ11/lane-scoring-backend/internal/leaderboard"
	"github.com/DoyleJ11/lane-scoring-backend/internal/lifecycle"
	"github.com/DoyleJ11/lane-scoring-backend/internal/results"
	"github.com/DoyleJ11/lane-scoring-backend/internal/roster"
	"github.com/DoyleJ11/lane-scoring-backend/internal/session"
	"go.uber.org/zap"
)

type Events interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type Deps struct {
	Events      Events
	Lifecycle   *lifecycle.Controller
	Sessions    *session.Authority
	Results     *results.Recorder
	Leaderboard *leaderboard.Aggregator
	Roster      *roster.Roster
	Hub         *hub.Hub
	Log         *zap.Logger
}

type Options struct {
	AllowedOrigins []string
	OutboxSize     int
	CodeMaxLen     int
}

// Server holds the services behind the HTTP routes.
type Server struct {
	Deps
	opts Options
}

func NewServer(d Deps, opts Options) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if opts.CodeMaxLen < 1 {
		opts.CodeMaxLen = 16
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{Deps: d, opts: opts}
}
