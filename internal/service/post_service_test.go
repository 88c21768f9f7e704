package service

import (
	"context"
	"testing"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertDraftForcesDraftStatus(t *testing.T) {
	pr := newFakePostRepo()
	svc := NewPostService(pr)
	ctx := context.Background()

	id, err := svc.UpsertDraft(ctx, &models.Post{
		UserID:    1,
		Title:     "Fall Sale",
		Caption:   "Everything 20% off",
		Platforms: []string{models.PlatformInstagram},
		Status:    models.PostStatusScheduled,
	})
	require.NoError(t, err)

	stored, err := pr.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, stored.Status)
	assert.NotNil(t, stored.AutosavedAt)
}

func TestUpsertDraftPrunesUnselectedPlatformCaptions(t *testing.T) {
	pr := newFakePostRepo()
	svc := NewPostService(pr)
	ctx := context.Background()

	id, err := svc.UpsertDraft(ctx, &models.Post{
		UserID:    1,
		Caption:   "keep me",
		Platforms: []string{models.PlatformInstagram},
		PlatformCaptions: models.PlatformCaptions{
			models.PlatformInstagram: "insta words",
			models.PlatformTiktok:    "tiktok words",
		},
	})
	require.NoError(t, err)

	stored, err := pr.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, stored.PlatformCaptions, models.PlatformInstagram)
	assert.NotContains(t, stored.PlatformCaptions, models.PlatformTiktok)
}

func TestUpsertDraftStaleWriteIsNoOp(t *testing.T) {
	pr := newFakePostRepo()
	svc := NewPostService(pr)
	ctx := context.Background()

	id, err := svc.UpsertDraft(ctx, &models.Post{
		UserID:  1,
		Caption: "first save",
	})
	require.NoError(t, err)

	// Simulate a newer save having landed already.
	pr.mu.Lock()
	pr.posts[id].UpdatedAt = time.Now().Add(time.Hour)
	pr.mu.Unlock()

	_, err = svc.UpsertDraft(ctx, &models.Post{
		ID:      id,
		UserID:  1,
		Caption: "late autosave",
	})
	require.NoError(t, err)

	stored, err := pr.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first save", stored.Caption)
}

func TestPostInfoRejectsForeignPost(t *testing.T) {
	pr := newFakePostRepo()
	svc := NewPostService(pr)
	ctx := context.Background()

	id, err := svc.UpsertDraft(ctx, &models.Post{UserID: 2, Caption: "private"})
	require.NoError(t, err)

	_, err = svc.PostInfo(ctx, id, 1)
	assert.Error(t, err)
}
