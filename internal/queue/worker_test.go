package queue

import (
	"context"
	"testing"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPostRepo struct {
	repository.PostRepository

	post      *models.Post
	published int
}

func (s *stubPostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	if s.post == nil || s.post.ID != id {
		return nil, nil
	}
	cp := *s.post
	return &cp, nil
}

func (s *stubPostRepo) MarkPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	if s.post != nil && s.post.ID == postID && s.post.Status == models.PostStatusScheduled {
		s.post.Status = models.PostStatusPublished
		s.post.PublishedAt = &publishedAt
		s.published++
	}
	return nil
}

type stubHistoryRepo struct {
	rows []models.PostingHistory
}

func (s *stubHistoryRepo) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	s.rows = append(s.rows, *ph)
	return int64(len(s.rows)), nil
}

func (s *stubHistoryRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error) {
	var out []*models.PostingHistory
	for i := range s.rows {
		if s.rows[i].PostID == postID {
			out = append(out, &s.rows[i])
		}
	}
	return out, nil
}

type stubAssetRepo struct {
	repository.MediaAssetRepository

	asset *models.MediaAsset
	ready int
}

func (s *stubAssetRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	if s.asset == nil || s.asset.ID != id {
		return nil, nil
	}
	cp := *s.asset
	return &cp, nil
}

func (s *stubAssetRepo) MarkVariantsReady(ctx context.Context, id int64) error {
	if s.asset != nil && s.asset.ID == id {
		s.asset.VariantsReady = true
		s.ready++
	}
	return nil
}

type stubNotifier struct {
	messages []string
}

func (s *stubNotifier) Notify(userID int64, level, message string) {
	s.messages = append(s.messages, message)
}

func TestPublishPostFlipsScheduledToPublished(t *testing.T) {
	when := time.Now().Add(-time.Minute)
	pr := &stubPostRepo{post: &models.Post{
		ID:           1,
		UserID:       7,
		Title:        "Fall Sale",
		Platforms:    []string{models.PlatformInstagram, models.PlatformTiktok},
		Status:       models.PostStatusScheduled,
		ScheduledFor: &when,
	}}
	ph := &stubHistoryRepo{}
	notifier := &stubNotifier{}
	q := NewQueue(pr, ph, &stubAssetRepo{}, notifier)

	err := q.PublishPost(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, pr.post.Status)
	assert.NotNil(t, pr.post.PublishedAt)
	require.Len(t, ph.rows, 2)
	assert.Equal(t, models.PlatformInstagram, ph.rows[0].Platform)
	assert.Equal(t, models.PlatformTiktok, ph.rows[1].Platform)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Fall Sale")
}

func TestPublishPostSkipsDraft(t *testing.T) {
	pr := &stubPostRepo{post: &models.Post{ID: 1, UserID: 7, Status: models.PostStatusDraft}}
	ph := &stubHistoryRepo{}
	q := NewQueue(pr, ph, &stubAssetRepo{}, &stubNotifier{})

	err := q.PublishPost(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusDraft, pr.post.Status)
	assert.Empty(t, ph.rows)
	assert.Zero(t, pr.published)
}

func TestPublishPostIsIdempotent(t *testing.T) {
	when := time.Now().Add(-time.Minute)
	pr := &stubPostRepo{post: &models.Post{
		ID:           1,
		UserID:       7,
		Platforms:    []string{models.PlatformInstagram},
		Status:       models.PostStatusScheduled,
		ScheduledFor: &when,
	}}
	ph := &stubHistoryRepo{}
	q := NewQueue(pr, ph, &stubAssetRepo{}, &stubNotifier{})

	require.NoError(t, q.PublishPost(context.Background(), 1))
	require.NoError(t, q.PublishPost(context.Background(), 1))

	assert.Equal(t, 1, pr.published)
	assert.Len(t, ph.rows, 1)
}

func TestPublishPostMissingPostIsNoOp(t *testing.T) {
	q := NewQueue(&stubPostRepo{}, &stubHistoryRepo{}, &stubAssetRepo{}, &stubNotifier{})

	err := q.PublishPost(context.Background(), 42)
	assert.NoError(t, err)
}

func TestResizeMediaMarksVariantsReady(t *testing.T) {
	ma := &stubAssetRepo{asset: &models.MediaAsset{ID: 3, UserID: 7}}
	notifier := &stubNotifier{}
	q := NewQueue(&stubPostRepo{}, &stubHistoryRepo{}, ma, notifier)

	err := q.ResizeMedia(context.Background(), 3)
	require.NoError(t, err)

	assert.True(t, ma.asset.VariantsReady)
	assert.Equal(t, 1, ma.ready)
	assert.Len(t, notifier.messages, 1)
}

func TestResizeMediaAlreadyReadyIsNoOp(t *testing.T) {
	ma := &stubAssetRepo{asset: &models.MediaAsset{ID: 3, UserID: 7, VariantsReady: true}}
	notifier := &stubNotifier{}
	q := NewQueue(&stubPostRepo{}, &stubHistoryRepo{}, ma, notifier)

	err := q.ResizeMedia(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 0, ma.ready)
	assert.Empty(t, notifier.messages)
}

func TestResizeMediaMissingAsset(t *testing.T) {
	q := NewQueue(&stubPostRepo{}, &stubHistoryRepo{}, &stubAssetRepo{}, &stubNotifier{})

	err := q.ResizeMedia(context.Background(), 9)
	assert.Error(t, err)
}
