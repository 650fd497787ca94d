package httpapi

import (
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/lifecycle"
	"github.com/DoyleJ11/lane-scoring-backend/internal/results"
	"github.com/DoyleJ11/lane-scoring-backend/internal/session"
	validation "github.com/go-ozzo/ozzo-validation"
)

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}

type createEventRequest struct {
	Code       string `json:"code"`
	ShotsCount int    `json:"shots_count"`
}

func (r createEventRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Length(1, domain.MaxCodeLen)),
		validation.Field(&r.ShotsCount, validation.Min(1)),
	))
}

type updateEventRequest struct {
	Status     *string `json:"status"`
	ShotsCount *int    `json:"shots_count"`
}

func (r updateEventRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(string(domain.EventStarted), string(domain.EventFinished))),
		validation.Field(&r.ShotsCount, validation.Min(1)),
	))
}

func (r updateEventRequest) patch() lifecycle.EventPatch {
	p := lifecycle.EventPatch{ShotsCount: r.ShotsCount}
	if r.Status != nil {
		st := domain.EventStatus(*r.Status)
		p.Status = &st
	}
	return p
}

type createDistanceRequest struct {
	Title      string `json:"title"`
	ShotsCount int    `json:"shots_count"`
}

func (r createDistanceRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.ShotsCount, validation.Min(1)),
	))
}

type updateDistanceRequest struct {
	Title      *string `json:"title"`
	ShotsCount *int    `json:"shots_count"`
	Status     *string `json:"status"`
}

func (r updateDistanceRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 100)),
		validation.Field(&r.ShotsCount, validation.Min(1)),
		validation.Field(&r.Status, validation.In(
			string(domain.DistancePending),
			string(domain.DistanceActive),
			string(domain.DistanceFinished),
		)),
	))
}

func (r updateDistanceRequest) patch() lifecycle.DistancePatch {
	p := lifecycle.DistancePatch{Title: r.Title, ShotsCount: r.ShotsCount}
	if r.Status != nil {
		st := domain.DistanceStatus(*r.Status)
		p.Status = &st
	}
	return p
}

type resultsRequest struct {
	Results []results.Shot `json:"results"`
}

func (r resultsRequest) Validate() error {
	if len(r.Results) == 0 {
		return fmt.Errorf("%w: results must not be empty", domain.ErrValidation)
	}
	return results.Validate(r.Results)
}

type loginRequest struct {
	Password  string `json:"password"`
	SessionID string `json:"session_id"`
}

type settingsRequest struct {
	HostPassword              *string `json:"host_password"`
	ViewerPassword            *string `json:"viewer_password"`
	ClientAllowAddParticipant *bool   `json:"client_allow_add_participant"`
}

func (r settingsRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.HostPassword, validation.Length(0, 64)),
		validation.Field(&r.ViewerPassword, validation.Length(0, 64)),
	))
}

func (r settingsRequest) patch() session.SettingsPatch {
	return session.SettingsPatch{
		HostPassword:              r.HostPassword,
		ViewerPassword:            r.ViewerPassword,
		ClientAllowAddParticipant: r.ClientAllowAddParticipant,
	}
}
