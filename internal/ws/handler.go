package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/hub"
	"github.com/DoyleJ11/lane-scoring-backend/internal/types"
	wire "github.com/DoyleJ11/lane-scoring-backend/pkg/types"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 4096
)

type Events interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type Options struct {
	AllowedOrigins []string
	OutboxSize     int
}

// Handler serves /ws/{code}. Every valid envelope a client sends is relayed
// to the other connections watching the same event.
func Handler(h *hub.Hub, events Events, opts Options, log *zap.Logger) http.HandlerFunc {
	patterns := originPatterns(opts.AllowedOrigins)
	if opts.OutboxSize < 1 {
		opts.OutboxSize = 32
	}

	return func(w http.ResponseWriter, r *http.Request) {
		code, err := domain.NormalizeCode(chi.URLParam(r, "code"), domain.MaxCodeLen)
		if err != nil {
			http.Error(w, "invalid event code", http.StatusBadRequest)
			return
		}
		ok, err := events.Exists(r.Context(), code)
		if err != nil {
			log.Error("lookup event", zap.String("code", code), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}

		connID := uuid.NewString()
		out := make(chan []byte, opts.OutboxSize)
		if !h.Connect(code, connID, out) {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		defer h.Disconnect(code, connID)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: patterns})
		if err != nil {
			log.Debug("websocket accept", zap.String("code", code), zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		log := log.With(zap.String("code", code), zap.String("conn_id", connID))
		log.Debug("connection opened")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine
		go func() {
			defer cancel()
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case payload, ok := <-out:
					if !ok {
						// the hub dropped us
						return
					}
					wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
					err := conn.Write(wctx, websocket.MessageText, payload)
					wcancel()
					if err != nil {
						log.Debug("write failed", zap.Error(err))
						return
					}
				case <-ticker.C:
					pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
					err := conn.Ping(pctx)
					pcancel()
					if err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if !errors.Is(err, context.Canceled) {
						log.Debug("read failed", zap.Error(err))
					}
				}
				return
			}

			msg, err := wire.Decode(data)
			if err != nil {
				log.Info("rejected envelope", zap.Error(err))
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				_ = conn.Write(wctx, websocket.MessageText, types.ErrorFrame(reason(err)))
				wcancel()
				continue
			}
			payload, err := wire.Encode(msg)
			if err != nil {
				log.Error("encode envelope", zap.Error(err))
				continue
			}
			h.Relay(code, connID, payload)
		}
	}
}

func reason(err error) string {
	if errors.Is(err, wire.ErrUnknownKind) {
		return "unknown type"
	}
	return "bad message"
}

// originPatterns turns configured origins into host patterns.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
