package domain

import (
	"time"
)

type EventStatus string

const (
	EventCreated  EventStatus = "created"
	EventStarted  EventStatus = "started"
	EventFinished EventStatus = "finished"
)

type DistanceStatus string

const (
	DistancePending  DistanceStatus = "pending"
	DistanceActive   DistanceStatus = "active"
	DistanceFinished DistanceStatus = "finished"
)

const (
	DefaultShotsCount   = 30
	DefaultDistanceName = "Distance 1"
)

// Property keys.
const (
	PropHostPassword         = "host_password"
	PropViewerPassword       = "viewer_password"
	PropAllowAddParticipant  = "client_allow_add_participant"
	defaultAllowParticipants = "true"
)

// There is exactly one Event row per store.
type Event struct {
	ID         uint        `gorm:"primaryKey" json:"-"`
	Code       string      `gorm:"size:16;not null;uniqueIndex" json:"code"`
	ShotsCount int         `gorm:"not null;default:30" json:"shots_count"`
	Status     EventStatus `gorm:"size:16;not null;default:created" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at"`
}

type Property struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"not null;default:''"`
}

type Distance struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"not null" json:"title"`
	ShotsCount int            `gorm:"not null" json:"shots_count"`
	SortOrder  int            `gorm:"not null;default:0" json:"sort_order"`
	Status     DistanceStatus `gorm:"size:16;not null;default:pending;index:ux_distances_single_active,unique,where:status = 'active'" json:"status"`
}

type Participant struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"not null" json:"name"`
	LaneNumber     int     `gorm:"not null;index" json:"lane_number"`
	Shift          string  `gorm:"size:8;not null" json:"shift"`
	Gender         string  `json:"gender"`
	AgeCategory    string  `json:"age_category"`
	ShootingType   string  `json:"shooting_type"`
	GroupType      string  `json:"group_type"`
	PersonalNumber *string `json:"personal_number"`
}

// LaneShift is the display label, e.g. "3B".
func (p Participant) LaneShift() string {
	return itoa(p.LaneNumber) + p.Shift
}

type Result struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParticipantID uint      `gorm:"not null;uniqueIndex:ux_results_shot;index" json:"participant_id"`
	DistanceID    uint      `gorm:"not null;uniqueIndex:ux_results_shot;index" json:"distance_id"`
	ShotNumber    int       `gorm:"not null;uniqueIndex:ux_results_shot" json:"shot_number"`
	Score         int       `gorm:"not null" json:"score"`
	IsX           bool      `gorm:"not null;default:false" json:"is_x"`
	CreatedAt     time.Time `json:"created_at"`
}

// Session holds a digest of the issued token, never the token itself.
type Session struct {
	Role       Role   `gorm:"primaryKey;size:16"`
	Identifier string `gorm:"primaryKey;size:16"`
	TokenHash  string `gorm:"not null"`
	Password   string `gorm:"not null;default:''"`
}

// Models lists every table of an event store in migration order.
func Models() []any {
	return []any{&Event{}, &Property{}, &Distance{}, &Participant{}, &Result{}, &Session{}}
}

// AllowsSelfRegistration interprets the client_allow_add_participant value.
// Missing means allowed.
func AllowsSelfRegistration(value string, ok bool) bool {
	if !ok {
		value = defaultAllowParticipants
	}
	switch value {
	case "false", "0", "":
		return false
	}
	return true
}
