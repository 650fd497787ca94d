package httpapi

import (
	"context"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/engine"
	wire "github.com/DoyleJ11/lane-scoring-backend/pkg/types"
	"go.uber.org/zap"
)

// publish sends a server-originated envelope to every connection of code.
// Failures are logged; the mutation that caused them already committed.
func (s *Server) publish(code string, m wire.Message) {
	b, err := wire.Encode(m)
	if err != nil {
		s.Log.Error("encode broadcast", zap.String("code", code), zap.String("type", string(m.Kind())), zap.Error(err))
		return
	}
	s.Hub.Publish(code, b)
}

func (s *Server) publishEventStatus(ctx context.Context, code string, ev domain.Event) {
	msg := wire.EventStatus{Status: string(ev.Status)}
	ds, err := s.Lifecycle.Distances(ctx, code)
	if err != nil {
		s.Log.Warn("load distances for event_status", zap.String("code", code), zap.Error(err))
	} else if d, ok := engine.ActiveDistance(ds); ok {
		id := d.ID
		msg.ActiveDistanceID = &id
	}
	s.publish(code, msg)
}

func (s *Server) publishTotals(ctx context.Context, code string, participants []uint) {
	for _, pid := range participants {
		total, err := s.Results.ParticipantTotal(ctx, code, pid)
		if err != nil {
			s.Log.Warn("load total for result_update", zap.String("code", code), zap.Uint("participant_id", pid), zap.Error(err))
			continue
		}
		s.publish(code, wire.ResultUpdate{ParticipantID: pid, TotalScore: total})
	}
}

func (s *Server) publishRefresh(code string) {
	s.publish(code, wire.Refresh{})
}
