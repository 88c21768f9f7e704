package queue

import (
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/postdeckhq/postdeck/internal/service"
)

type Queue struct {
	pr       repository.PostRepository
	ph       repository.PostingHistoryRepository
	ma       repository.MediaAssetRepository
	notifier service.Notifier
}

func NewQueue(
	pr repository.PostRepository,
	ph repository.PostingHistoryRepository,
	ma repository.MediaAssetRepository,
	notifier service.Notifier) *Queue {
	return &Queue{
		pr:       pr,
		ph:       ph,
		ma:       ma,
		notifier: notifier,
	}
}

const (
	TaskTypePublishPost = "publish:post"
	TaskTypeResizeMedia = "resize:media"
)

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

type ResizeMediaPayload struct {
	AssetID int64 `json:"asset_id"`
}
