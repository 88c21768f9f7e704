package service

import (
	"context"
	"testing"
	"time"

	config "github.com/postdeckhq/postdeck/configs"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalendarFixture() (CalendarService, *fakePostRepo, *fakeCalendarEventRepo, *fakeSettingsRepo) {
	cfg := &config.Config{DefaultPostHour: 10, ReschedulePolicy: models.ReschedulePolicyPromote}
	pr := newFakePostRepo()
	cer := &fakeCalendarEventRepo{}
	sr := newFakeSettingsRepo()
	return NewCalendarService(cfg, pr, cer, sr), pr, cer, sr
}

func seedScheduled(pr *fakePostRepo, userID int64, title string, at time.Time) int64 {
	id, _ := pr.Insert(context.Background(), nil, &models.Post{
		UserID:       userID,
		Title:        title,
		Caption:      title,
		Platforms:    []string{models.PlatformInstagram},
		Status:       models.PostStatusScheduled,
		ScheduledFor: &at,
	})
	return id
}

func localDay(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
}

func TestCalendarRangeGroupsPostsByDay(t *testing.T) {
	svc, pr, cer, _ := newCalendarFixture()
	ctx := context.Background()

	seedScheduled(pr, 1, "monday post", localDay(2026, time.October, 5, 9))
	seedScheduled(pr, 1, "wednesday post", localDay(2026, time.October, 7, 15))
	seedScheduled(pr, 2, "someone else", localDay(2026, time.October, 6, 9))

	cer.events = []*models.CalendarEvent{
		{ID: 1, Name: "World Teachers' Day", EventDate: localDay(2026, time.October, 5, 0), EventType: models.EventTypeHoliday},
	}

	days, err := svc.Range(ctx, 1, localDay(2026, time.October, 5, 0), localDay(2026, time.October, 8, 0))
	require.NoError(t, err)
	require.Len(t, days, 4)

	assert.Equal(t, "2026-10-05", days[0].Date)
	require.Len(t, days[0].Posts, 1)
	assert.Equal(t, "monday post", days[0].Posts[0].Title)
	require.Len(t, days[0].Events, 1)
	assert.Equal(t, "World Teachers' Day", days[0].Events[0].Name)

	// Empty days are still present in the response.
	assert.Equal(t, "2026-10-06", days[1].Date)
	assert.Empty(t, days[1].Posts)

	assert.Equal(t, "2026-10-07", days[2].Date)
	require.Len(t, days[2].Posts, 1)
	assert.Equal(t, "wednesday post", days[2].Posts[0].Title)

	assert.Equal(t, "2026-10-08", days[3].Date)
	assert.Empty(t, days[3].Posts)
}

func TestCalendarRangeRejectsInvertedBounds(t *testing.T) {
	svc, _, _, _ := newCalendarFixture()

	_, err := svc.Range(context.Background(), 1, localDay(2026, time.October, 8, 0), localDay(2026, time.October, 5, 0))
	assert.Error(t, err)
}

func TestCalendarRescheduleMovesPostToDefaultHour(t *testing.T) {
	svc, pr, _, _ := newCalendarFixture()
	ctx := context.Background()

	postID := seedScheduled(pr, 1, "movable", time.Now().Add(24*time.Hour))

	day := time.Now().AddDate(0, 0, 14)
	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: day.Format("2006-01-02")})
	require.NoError(t, err)

	moved, err := pr.GetByID(ctx, postID)
	require.NoError(t, err)
	require.NotNil(t, moved.ScheduledFor)
	assert.Equal(t, day.Format("2006-01-02"), moved.ScheduledFor.Format("2006-01-02"))
	assert.Equal(t, 10, moved.ScheduledFor.Hour())
	assert.Equal(t, 0, moved.ScheduledFor.Minute())
	assert.Equal(t, models.PostStatusScheduled, moved.Status)
}

func TestCalendarRescheduleUsesUserSettingsHour(t *testing.T) {
	svc, pr, _, sr := newCalendarFixture()
	ctx := context.Background()

	sr.settings[1] = &models.Settings{UserID: 1, DefaultPostHour: 18, ReschedulePolicy: models.ReschedulePolicyPromote}
	postID := seedScheduled(pr, 1, "movable", time.Now().Add(24*time.Hour))

	day := time.Now().AddDate(0, 0, 7)
	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: day.Format("2006-01-02")})
	require.NoError(t, err)

	moved, _ := pr.GetByID(ctx, postID)
	assert.Equal(t, 18, moved.ScheduledFor.Hour())
}

func TestCalendarRescheduleDraftBecomesScheduled(t *testing.T) {
	svc, pr, _, _ := newCalendarFixture()
	ctx := context.Background()

	postID, _ := pr.Insert(ctx, nil, &models.Post{
		UserID:    1,
		Title:     "still a draft",
		Caption:   "still a draft",
		Platforms: []string{models.PlatformInstagram},
		Status:    models.PostStatusDraft,
	})

	day := time.Now().AddDate(0, 0, 2)
	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: day.Format("2006-01-02")})
	require.NoError(t, err)

	moved, _ := pr.GetByID(ctx, postID)
	assert.Equal(t, models.PostStatusScheduled, moved.Status)
	assert.NotNil(t, moved.ScheduledFor)
}

func TestCalendarReschedulePastDayRestricted(t *testing.T) {
	svc, pr, _, sr := newCalendarFixture()
	ctx := context.Background()

	sr.settings[1] = &models.Settings{UserID: 1, DefaultPostHour: 10, ReschedulePolicy: models.ReschedulePolicyRestrict}
	postID := seedScheduled(pr, 1, "movable", time.Now().Add(24*time.Hour))

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: yesterday})
	assert.ErrorIs(t, err, ErrPastDay)

	// Forcing overrides the restriction.
	err = svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: yesterday, Force: true})
	assert.NoError(t, err)
}

func TestCalendarReschedulePastDayPromotePolicy(t *testing.T) {
	svc, pr, _, _ := newCalendarFixture()
	ctx := context.Background()

	postID := seedScheduled(pr, 1, "movable", time.Now().Add(24*time.Hour))
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: yesterday})
	require.NoError(t, err)

	moved, _ := pr.GetByID(ctx, postID)
	assert.True(t, moved.ScheduledFor.Before(time.Now()))
	assert.Equal(t, models.PostStatusScheduled, moved.Status)
}

func seedWithStatus(pr *fakePostRepo, userID int64, status string) int64 {
	now := time.Now()
	post := &models.Post{
		UserID:    userID,
		Title:     "already out",
		Caption:   "already out",
		Platforms: []string{models.PlatformInstagram},
		Status:    status,
	}
	if status == models.PostStatusPublished {
		post.PublishedAt = &now
	}
	id, _ := pr.Insert(context.Background(), nil, post)
	return id
}

func TestCalendarReschedulePromotesPublishedPost(t *testing.T) {
	svc, pr, _, _ := newCalendarFixture()
	ctx := context.Background()

	postID := seedWithStatus(pr, 1, models.PostStatusPublished)

	day := time.Now().AddDate(0, 0, 3)
	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: day.Format("2006-01-02")})
	require.NoError(t, err)

	moved, _ := pr.GetByID(ctx, postID)
	assert.Equal(t, models.PostStatusScheduled, moved.Status)
	require.NotNil(t, moved.ScheduledFor)
	assert.Equal(t, day.Format("2006-01-02"), moved.ScheduledFor.Format("2006-01-02"))
}

func TestCalendarReschedulePromotesFailedPost(t *testing.T) {
	svc, pr, _, _ := newCalendarFixture()
	ctx := context.Background()

	postID := seedWithStatus(pr, 1, models.PostStatusFailed)

	day := time.Now().AddDate(0, 0, 3)
	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: day.Format("2006-01-02")})
	require.NoError(t, err)

	moved, _ := pr.GetByID(ctx, postID)
	assert.Equal(t, models.PostStatusScheduled, moved.Status)
}

func TestCalendarRescheduleRestrictRejectsPublished(t *testing.T) {
	svc, pr, _, sr := newCalendarFixture()
	ctx := context.Background()

	sr.settings[1] = &models.Settings{UserID: 1, DefaultPostHour: 10, ReschedulePolicy: models.ReschedulePolicyRestrict}
	day := time.Now().AddDate(0, 0, 3).Format("2006-01-02")

	publishedID := seedWithStatus(pr, 1, models.PostStatusPublished)
	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: publishedID, Day: day})
	assert.ErrorIs(t, err, ErrAlreadyPublished)

	failedID := seedWithStatus(pr, 1, models.PostStatusFailed)
	err = svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: failedID, Day: day})
	assert.ErrorIs(t, err, ErrAlreadyPublished)

	// Forcing puts the post back on the schedule.
	err = svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: publishedID, Day: day, Force: true})
	require.NoError(t, err)
	moved, _ := pr.GetByID(ctx, publishedID)
	assert.Equal(t, models.PostStatusScheduled, moved.Status)
}

func TestCalendarRangeOrdersPostsWithinDay(t *testing.T) {
	svc, pr, _, _ := newCalendarFixture()
	ctx := context.Background()

	// Seeded out of order; the response must come back by scheduled time.
	seedScheduled(pr, 1, "evening recap", localDay(2026, time.October, 5, 19))
	seedScheduled(pr, 1, "morning teaser", localDay(2026, time.October, 5, 8))
	seedScheduled(pr, 1, "lunch drop", localDay(2026, time.October, 5, 12))

	days, err := svc.Range(ctx, 1, localDay(2026, time.October, 5, 0), localDay(2026, time.October, 5, 0))
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Posts, 3)

	assert.Equal(t, "morning teaser", days[0].Posts[0].Title)
	assert.Equal(t, "lunch drop", days[0].Posts[1].Title)
	assert.Equal(t, "evening recap", days[0].Posts[2].Title)
}

func TestCalendarRangeSpansFallBackTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	svc, _, _, _ := newCalendarFixture()

	// DST ends Nov 1 2026; the 25-hour day must not duplicate or skip a date.
	from := time.Date(2026, time.October, 31, 0, 0, 0, 0, loc)
	to := time.Date(2026, time.November, 3, 0, 0, 0, 0, loc)

	days, err := svc.Range(context.Background(), 1, from, to)
	require.NoError(t, err)
	require.Len(t, days, 4)

	assert.Equal(t, "2026-10-31", days[0].Date)
	assert.Equal(t, "2026-11-01", days[1].Date)
	assert.Equal(t, "2026-11-02", days[2].Date)
	assert.Equal(t, "2026-11-03", days[3].Date)
}

func TestCalendarRangeShowsCommittedPost(t *testing.T) {
	f := newComposerFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.svc.Open(ctx, 1, 0)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, 1, &transfer.ComposerUpdate{
		Title:     strptr("Fall Sale"),
		Topic:     strptr("Fall Sale"),
		Platforms: platformsPtr(models.PlatformInstagram),
		Caption:   strptr("Everything 20% off"),
	})
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	day := time.Now().AddDate(0, 0, 7)
	postID, _, err := f.svc.Commit(ctx, 1, &transfer.ScheduleRequest{
		Mode: ScheduleModeLater,
		Date: day.Format("2006-01-02"),
		Time: "14:30",
	})
	require.NoError(t, err)

	cfg := &config.Config{DefaultPostHour: 10, ReschedulePolicy: models.ReschedulePolicyPromote}
	calendar := NewCalendarService(cfg, f.pr, &fakeCalendarEventRepo{}, newFakeSettingsRepo())

	days, err := calendar.Range(ctx, 1, day.AddDate(0, 0, -3), day.AddDate(0, 0, 3))
	require.NoError(t, err)

	var hits []int64
	for _, d := range days {
		for _, p := range d.Posts {
			if p.ID == postID {
				hits = append(hits, p.ID)
				assert.Equal(t, day.Format("2006-01-02"), d.Date)
				assert.Equal(t, "Fall Sale", p.Title)
				assert.Equal(t, models.PostStatusScheduled, p.Status)
			}
		}
	}
	require.Len(t, hits, 1, "committed post should appear exactly once")
}

func TestCalendarRescheduleForeignPost(t *testing.T) {
	svc, pr, _, _ := newCalendarFixture()
	ctx := context.Background()

	postID := seedScheduled(pr, 2, "not yours", time.Now().Add(24*time.Hour))

	day := time.Now().AddDate(0, 0, 3)
	err := svc.Reschedule(ctx, 1, &transfer.RescheduleRequest{PostID: postID, Day: day.Format("2006-01-02")})
	assert.Error(t, err)
}
