package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Real-time envelopes are flat JSON objects tagged by "type", e.g.
//
//	{"type":"result_update","participant_id":3,"total_score":87}
//	{"type":"event_status","status":"started","active_distance_id":2}
//	{"type":"refresh"}
//	{"type":"lane_session_reset","lane_number":4}
//	{"type":"distance_update","distance_id":2,"status":"finished"}

var ErrUnknownKind = errors.New("unknown message type")
var ErrMalformed = errors.New("malformed message")

type Kind string

const (
	KindResultUpdate     Kind = "result_update"
	KindEventStatus      Kind = "event_status"
	KindRefresh          Kind = "refresh"
	KindLaneSessionReset Kind = "lane_session_reset"
	KindDistanceUpdate   Kind = "distance_update"
)

// Message is one of ResultUpdate, EventStatus, Refresh, LaneSessionReset or
// DistanceUpdate.
type Message interface {
	Kind() Kind
	validate() error
}

type ResultUpdate struct {
	ParticipantID uint `json:"participant_id"`
	TotalScore    int  `json:"total_score"`
}

type EventStatus struct {
	Status           string `json:"status"`
	ActiveDistanceID *uint  `json:"active_distance_id"`
}

type Refresh struct{}

type LaneSessionReset struct {
	LaneNumber int `json:"lane_number"`
}

type DistanceUpdate struct {
	DistanceID uint   `json:"distance_id"`
	Status     string `json:"status"`
}

func (ResultUpdate) Kind() Kind     { return KindResultUpdate }
func (EventStatus) Kind() Kind      { return KindEventStatus }
func (Refresh) Kind() Kind          { return KindRefresh }
func (LaneSessionReset) Kind() Kind { return KindLaneSessionReset }
func (DistanceUpdate) Kind() Kind   { return KindDistanceUpdate }

func (m ResultUpdate) validate() error {
	if m.ParticipantID == 0 {
		return fmt.Errorf("%w: participant_id is required", ErrMalformed)
	}
	return nil
}

func (m EventStatus) validate() error {
	switch m.Status {
	case "created", "started", "finished":
		return nil
	}
	return fmt.Errorf("%w: bad event status %q", ErrMalformed, m.Status)
}

func (Refresh) validate() error { return nil }

func (m LaneSessionReset) validate() error {
	if m.LaneNumber < 1 {
		return fmt.Errorf("%w: lane_number must be positive", ErrMalformed)
	}
	return nil
}

func (m DistanceUpdate) validate() error {
	if m.DistanceID == 0 {
		return fmt.Errorf("%w: distance_id is required", ErrMalformed)
	}
	switch m.Status {
	case "pending", "active", "finished":
		return nil
	}
	return fmt.Errorf("%w: bad distance status %q", ErrMalformed, m.Status)
}

// required lists the fields a kind must carry.
var required = map[Kind][]string{
	KindResultUpdate:     {"participant_id", "total_score"},
	KindEventStatus:      {"status"},
	KindRefresh:          nil,
	KindLaneSessionReset: {"lane_number"},
	KindDistanceUpdate:   {"distance_id", "status"},
}

// Decode parses an envelope into its concrete message. Unknown kinds fail
// with ErrUnknownKind; missing or invalid fields fail with ErrMalformed.
func Decode(data []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var kind Kind
	if raw, ok := fields["type"]; !ok || json.Unmarshal(raw, &kind) != nil {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	var m Message
	switch kind {
	case KindResultUpdate:
		m = &ResultUpdate{}
	case KindEventStatus:
		m = &EventStatus{}
	case KindRefresh:
		m = &Refresh{}
	case KindLaneSessionReset:
		m = &LaneSessionReset{}
	case KindDistanceUpdate:
		m = &DistanceUpdate{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	for _, f := range required[kind] {
		if _, ok := fields[f]; !ok {
			return nil, fmt.Errorf("%w: %s requires %s", ErrMalformed, kind, f)
		}
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	m = deref(m)
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func deref(m Message) Message {
	switch v := m.(type) {
	case *ResultUpdate:
		return *v
	case *EventStatus:
		return *v
	case *Refresh:
		return *v
	case *LaneSessionReset:
		return *v
	case *DistanceUpdate:
		return *v
	}
	return m
}

// Encode renders m as a tagged envelope carrying only the kind's fields.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(m.Kind())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
