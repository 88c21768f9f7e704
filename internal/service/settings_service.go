package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
)

type SettingsService interface {
	GetSettingsInfo(ctx context.Context, id int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, settings *models.Settings) error
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		sr: sr,
	}
}

func (s *settingsService) GetSettingsInfo(ctx context.Context, id int64) (*models.Settings, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isExist {
		err = errors.New("setting for given user doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, settings *models.Settings) error {

	if settings.DefaultPostHour < 0 || settings.DefaultPostHour > 23 {
		return fmt.Errorf("default post hour must be between 0 and 23")
	}

	switch settings.ReschedulePolicy {
	case models.ReschedulePolicyPromote, models.ReschedulePolicyRestrict:
	default:
		return fmt.Errorf("unknown reschedule policy %q", settings.ReschedulePolicy)
	}

	err := s.sr.UpdateSettings(ctx, settings, userID)
	if err != nil {
		return err
	}
	return nil
}
