package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostRepo(t *testing.T) (PostRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostRepository(db), mock
}

func postRows(posts ...*models.Post) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "caption", "platform_captions", "platforms",
		"status", "scheduled_for", "published_at", "media_urls", "autosaved_at",
		"created_at", "updated_at",
	})
	for _, p := range posts {
		rows.AddRow(
			p.ID, p.UserID, p.Title, p.Caption,
			[]byte(`{}`), []byte(`{instagram}`),
			p.Status, p.ScheduledFor, p.PublishedAt, []byte(`{}`), p.AutosavedAt,
			p.CreatedAt, p.UpdatedAt,
		)
	}
	return rows
}

func TestPostRepositoryInsertReturnsID(t *testing.T) {
	repo, mock := newPostRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
		WithArgs(int64(1), "Fall Sale", "Everything 20% off", sqlmock.AnyArg(), sqlmock.AnyArg(),
			models.PostStatusDraft, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Insert(context.Background(), nil, &models.Post{
		UserID:    1,
		Title:     "Fall Sale",
		Caption:   "Everything 20% off",
		Platforms: []string{models.PlatformInstagram},
		Status:    models.PostStatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryUpdateStaleWriteNotApplied(t *testing.T) {
	repo, mock := newPostRepo(t)

	// The updated_at guard matches no rows for an out-of-date snapshot.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.Update(context.Background(), nil, &models.Post{
		ID:        5,
		UserID:    1,
		Caption:   "late autosave",
		UpdatedAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryUpdateApplied(t *testing.T) {
	repo, mock := newPostRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.Update(context.Background(), nil, &models.Post{
		ID:        5,
		UserID:    1,
		Caption:   "fresh save",
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryGetByIDMissingRow(t *testing.T) {
	repo, mock := newPostRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(99)).
		WillReturnRows(postRows())

	post, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryListScheduledBetween(t *testing.T) {
	repo, mock := newPostRepo(t)

	from := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	first := from.Add(12 * time.Hour)
	second := from.Add(72 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("scheduled_for IS NOT NULL")).
		WithArgs(int64(1), from, to).
		WillReturnRows(postRows(
			&models.Post{ID: 1, UserID: 1, Title: "first", Status: models.PostStatusScheduled, ScheduledFor: &first},
			&models.Post{ID: 2, UserID: 1, Title: "second", Status: models.PostStatusScheduled, ScheduledFor: &second},
		))

	posts, err := repo.ListScheduledBetween(context.Background(), 1, from, to)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "first", posts[0].Title)
	assert.Equal(t, "second", posts[1].Title)
	assert.Equal(t, []string{"instagram"}, posts[0].Platforms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryUpdateScheduleReportsAffectedRows(t *testing.T) {
	repo, mock := newPostRepo(t)

	slot := time.Date(2026, time.October, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("SET scheduled_for")).
		WithArgs(slot, models.PostStatusScheduled, sqlmock.AnyArg(), int64(5), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.UpdateSchedule(context.Background(), 5, 1, slot, models.PostStatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	mock.ExpectExec(regexp.QuoteMeta("SET scheduled_for")).
		WithArgs(slot, models.PostStatusScheduled, sqlmock.AnyArg(), int64(6), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err = repo.UpdateSchedule(context.Background(), 6, 1, slot, models.PostStatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryMarkPublishedGuardsOnScheduled(t *testing.T) {
	repo, mock := newPostRepo(t)

	publishedAt := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts")).
		WithArgs(models.PostStatusPublished, publishedAt, sqlmock.AnyArg(), int64(5), models.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkPublished(context.Background(), 5, publishedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryCheckByUserID(t *testing.T) {
	repo, mock := newPostRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM posts")).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := repo.CheckByUserID(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM posts")).
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err = repo.CheckByUserID(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
