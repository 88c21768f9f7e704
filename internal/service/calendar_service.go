package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/postdeckhq/postdeck/configs"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

var (
	ErrPastDay          = errors.New("cannot schedule a post in the past")
	ErrAlreadyPublished = errors.New("post has already left the schedule")
)

type CalendarService interface {
	Range(ctx context.Context, userID int64, from, to time.Time) ([]*transfer.CalendarDay, error)
	Reschedule(ctx context.Context, userID int64, req *transfer.RescheduleRequest) error
}

type calendarService struct {
	cfg *config.Config
	pr  repository.PostRepository
	cer repository.CalendarEventRepository
	sr  repository.SettingsRepository
}

func NewCalendarService(cfg *config.Config, pr repository.PostRepository, cer repository.CalendarEventRepository, sr repository.SettingsRepository) CalendarService {
	return &calendarService{cfg: cfg, pr: pr, cer: cer, sr: sr}
}

const dayFormat = "2006-01-02"

// Range returns one entry per calendar day in [from, to], each carrying the
// user's posts scheduled that day and any seasonal events on it. Days are
// ordered and posts within a day keep their scheduled order.
func (s *calendarService) Range(ctx context.Context, userID int64, from, to time.Time) ([]*transfer.CalendarDay, error) {
	if to.Before(from) {
		return nil, errors.New("range end is before range start")
	}

	fromDay := truncateToDay(from)
	toDay := truncateToDay(to)

	posts, err := s.pr.ListScheduledBetween(ctx, userID, fromDay, toDay.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("error listing scheduled posts: %w", err)
	}

	events, err := s.cer.ListBetween(ctx, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("error listing calendar events: %w", err)
	}

	postsByDay := make(map[string][]*transfer.CalendarPost)
	for _, p := range posts {
		if p.ScheduledFor == nil {
			continue
		}
		key := p.ScheduledFor.Format(dayFormat)
		postsByDay[key] = append(postsByDay[key], &transfer.CalendarPost{
			ID:           p.ID,
			Title:        p.Title,
			Caption:      p.Caption,
			Platforms:    p.Platforms,
			Status:       p.Status,
			ScheduledFor: *p.ScheduledFor,
		})
	}

	eventsByDay := make(map[string][]*transfer.CalendarEventItem)
	for _, ev := range events {
		key := ev.EventDate.Format(dayFormat)
		eventsByDay[key] = append(eventsByDay[key], &transfer.CalendarEventItem{
			ID:   ev.ID,
			Name: ev.Name,
			Type: ev.EventType,
		})
	}

	var days []*transfer.CalendarDay
	// AddDate keeps midnight across DST transitions where adding 24h would not.
	for d := fromDay; !d.After(toDay); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayFormat)
		days = append(days, &transfer.CalendarDay{
			Date:   key,
			Posts:  postsByDay[key],
			Events: eventsByDay[key],
		})
	}

	return days, nil
}

// Reschedule drops a post onto a new day. The time of day resets to the
// user's default posting hour and the post becomes scheduled regardless of
// its prior status. Under promote any post is moved back onto the schedule,
// published and failed ones included. Under restrict a published or failed
// post, or a drop onto a past day, is rejected unless forced.
func (s *calendarService) Reschedule(ctx context.Context, userID int64, req *transfer.RescheduleRequest) error {
	day, err := time.ParseInLocation(dayFormat, req.Day, time.Local)
	if err != nil {
		return fmt.Errorf("invalid day format: %w", err)
	}

	post, err := s.pr.GetByID(ctx, req.PostID)
	if err != nil {
		return err
	}
	if post == nil || post.UserID != userID {
		return errors.New("post not found")
	}

	hour, policy := s.userPolicy(ctx, userID)

	if policy == models.ReschedulePolicyRestrict && !req.Force &&
		(post.Status == models.PostStatusPublished || post.Status == models.PostStatusFailed) {
		return ErrAlreadyPublished
	}

	scheduledFor := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.Local)

	if scheduledFor.Before(time.Now()) && policy == models.ReschedulePolicyRestrict && !req.Force {
		return ErrPastDay
	}

	affected, err := s.pr.UpdateSchedule(ctx, req.PostID, userID, scheduledFor, models.PostStatusScheduled)
	if err != nil {
		return fmt.Errorf("error rescheduling post: %w", err)
	}
	if affected == 0 {
		// Post vanished between the read and the write; treat as a no-op.
		slog.Info("reschedule matched no rows", "post_id", req.PostID)
	}

	return nil
}

func (s *calendarService) userPolicy(ctx context.Context, userID int64) (int, string) {
	hour := s.cfg.DefaultPostHour
	policy := s.cfg.ReschedulePolicy

	settings, found, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		slog.Info(err.Error())
		return hour, policy
	}
	if found {
		if settings.DefaultPostHour >= 0 && settings.DefaultPostHour <= 23 {
			hour = settings.DefaultPostHour
		}
		if settings.ReschedulePolicy != "" {
			policy = settings.ReschedulePolicy
		}
	}
	return hour, policy
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
