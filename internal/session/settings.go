package session

import (
	"context"
	"strconv"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"go.uber.org/zap"
)

// Settings are the host-managed credentials and toggles of an event.
type Settings struct {
	HostPassword              string `json:"host_password"`
	ViewerPassword            string `json:"viewer_password"`
	ClientAllowAddParticipant bool   `json:"client_allow_add_participant"`
}

type SettingsPatch struct {
	HostPassword              *string
	ViewerPassword            *string
	ClientAllowAddParticipant *bool
}

func (a *Authority) Settings(ctx context.Context, code string) (Settings, error) {
	s, err := a.stores.Open(ctx, code)
	if err != nil {
		return Settings{}, err
	}
	var out Settings
	err = s.View(ctx, func(tx *store.Tx) error {
		props, err := tx.Properties()
		if err != nil {
			return err
		}
		out = settingsFrom(props)
		return nil
	})
	return out, err
}

// UpdateSettings writes the given fields. Changing a password does not end
// existing sessions.
func (a *Authority) UpdateSettings(ctx context.Context, code string, p SettingsPatch) (Settings, error) {
	s, err := a.stores.Open(ctx, code)
	if err != nil {
		return Settings{}, err
	}
	var out Settings
	err = s.Update(ctx, func(tx *store.Tx) error {
		if p.HostPassword != nil {
			if err := tx.SetProperty(domain.PropHostPassword, *p.HostPassword); err != nil {
				return err
			}
		}
		if p.ViewerPassword != nil {
			if err := tx.SetProperty(domain.PropViewerPassword, *p.ViewerPassword); err != nil {
				return err
			}
		}
		if p.ClientAllowAddParticipant != nil {
			if err := tx.SetProperty(domain.PropAllowAddParticipant, strconv.FormatBool(*p.ClientAllowAddParticipant)); err != nil {
				return err
			}
		}
		props, err := tx.Properties()
		if err != nil {
			return err
		}
		out = settingsFrom(props)
		return nil
	})
	if err == nil {
		a.log.Info("event settings updated", zap.String("code", code))
	}
	return out, err
}

func settingsFrom(props map[string]string) Settings {
	allow, ok := props[domain.PropAllowAddParticipant]
	return Settings{
		HostPassword:              props[domain.PropHostPassword],
		ViewerPassword:            props[domain.PropViewerPassword],
		ClientAllowAddParticipant: domain.AllowsSelfRegistration(allow, ok),
	}
}
