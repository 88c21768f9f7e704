package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
)

type PostService interface {
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
	UpsertDraft(ctx context.Context, post *models.Post) (int64, error)
}

type postService struct {
	pr repository.PostRepository
}

func NewPostService(pr repository.PostRepository) PostService {
	return &postService{pr: pr}
}

// UpsertDraft persists in-progress composer state. Status is forced to draft
// here: only the composer's commit path may move a post out of draft.
func (s *postService) UpsertDraft(ctx context.Context, post *models.Post) (int64, error) {
	if post == nil {
		err := errors.New("post is nil")
		slog.Error(err.Error())
		return 0, err
	}

	post.Status = models.PostStatusDraft
	prunePlatformCaptions(post)

	now := time.Now()
	post.UpdatedAt = now
	post.AutosavedAt = &now

	if post.ID == 0 {
		id, err := s.pr.Insert(ctx, nil, post)
		if err != nil {
			return 0, fmt.Errorf("error creating draft: %w", err)
		}
		post.ID = id
		return id, nil
	}

	applied, err := s.pr.Update(ctx, nil, post)
	if err != nil {
		return 0, fmt.Errorf("error saving draft: %w", err)
	}
	if !applied {
		// Stale write: a newer save already landed. Treated as a no-op.
		slog.Info("stale draft write skipped", "post_id", post.ID)
	}

	return post.ID, nil
}

// prunePlatformCaptions drops caption entries for platforms no longer
// selected, keeping platform_captions keys a subset of platforms.
func prunePlatformCaptions(post *models.Post) {
	if len(post.PlatformCaptions) == 0 {
		return
	}
	selected := make(map[string]struct{}, len(post.Platforms))
	for _, p := range post.Platforms {
		selected[p] = struct{}{}
	}
	for platform := range post.PlatformCaptions {
		if _, ok := selected[platform]; !ok {
			delete(post.PlatformCaptions, platform)
		}
	}
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info")
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("user is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post_id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	err = s.pr.Remove(ctx, postID)
	if err != nil {
		return fmt.Errorf("error removing post")
	}

	return nil
}
