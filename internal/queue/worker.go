package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/service"
)

func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.PublishPost(ctx, payload.PostID)
}

// PublishPost flips a scheduled post to published and records one history row
// per target platform. Posts that are no longer in the scheduled state are
// skipped: a draft never publishes and an already published post never
// publishes twice.
func (j *Queue) PublishPost(ctx context.Context, postID int64) error {
	post, err := j.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Info("publish task for missing post", "post_id", postID)
		return nil
	}

	if post.Status != models.PostStatusScheduled {
		slog.Info("skipping publish, post is not scheduled", "post_id", postID, "status", post.Status)
		return nil
	}

	if err := j.pr.MarkPublished(ctx, postID, time.Now()); err != nil {
		j.notifier.Notify(post.UserID, service.NotifyError, fmt.Sprintf("Publishing %q failed", post.Title))
		return err
	}

	for _, platform := range post.Platforms {
		history := models.PostingHistory{
			UserID:   post.UserID,
			PostID:   postID,
			Platform: platform,
		}
		if _, err := j.ph.Create(ctx, &history); err != nil {
			slog.Info(err.Error())
		}
	}

	j.notifier.Notify(post.UserID, service.NotifySuccess, fmt.Sprintf("%q is now live", post.Title))

	return nil
}

func (j *Queue) HandleResizeMediaTask(ctx context.Context, task *asynq.Task) error {
	var payload ResizeMediaPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.ResizeMedia(ctx, payload.AssetID)
}

// ResizeMedia marks the per-platform variants of an asset as ready. The
// variants themselves come from the storage pipeline; this task only records
// completion once the processing window has elapsed.
func (j *Queue) ResizeMedia(ctx context.Context, assetID int64) error {
	asset, err := j.ma.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return errors.New("media asset not found")
	}

	if asset.VariantsReady {
		return nil
	}

	if err := j.ma.MarkVariantsReady(ctx, assetID); err != nil {
		return err
	}

	j.notifier.Notify(asset.UserID, service.NotifySuccess, "Media variants are ready")

	return nil
}
