package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/postdeckhq/postdeck/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	ListScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Post, error)
	Insert(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	Update(ctx context.Context, tx *sql.Tx, post *models.Post) (bool, error)
	UpdateSchedule(ctx context.Context, postID, userID int64, scheduledFor time.Time, status string) (int64, error)
	UpdateStatus(ctx context.Context, status string, postID int64) error
	MarkPublished(ctx context.Context, postID int64, publishedAt time.Time) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, title, caption, platform_captions, platforms, status, scheduled_for, published_at, media_urls, autosaved_at, created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Caption,
		&post.PlatformCaptions,
		pq.Array(&post.Platforms),
		&post.Status,
		&post.ScheduledFor,
		&post.PublishedAt,
		pq.Array(&post.MediaURLs),
		&post.AutosavedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Insert(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, title, caption, platform_captions, platforms, status, scheduled_for, published_at, media_urls, autosaved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		post.UserID,
		post.Title,
		post.Caption,
		post.PlatformCaptions,
		pq.Array(post.Platforms),
		post.Status,
		post.ScheduledFor,
		post.PublishedAt,
		pq.Array(post.MediaURLs),
		post.AutosavedAt,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// Update applies a full row write guarded by the row's updated_at: a write
// whose snapshot is older than the stored row affects zero rows and returns
// false, so out-of-order autosave completions cannot clobber newer state.
func (r *postRepository) Update(ctx context.Context, tx *sql.Tx, post *models.Post) (bool, error) {
	query := `
		UPDATE posts
		SET title = $1,
			caption = $2,
			platform_captions = $3,
			platforms = $4,
			status = $5,
			scheduled_for = $6,
			published_at = $7,
			media_urls = $8,
			autosaved_at = $9,
			updated_at = $10
		WHERE id = $11 AND user_id = $12 AND updated_at <= $10
	`

	args := []interface{}{
		post.Title,
		post.Caption,
		post.PlatformCaptions,
		pq.Array(post.Platforms),
		post.Status,
		post.ScheduledFor,
		post.PublishedAt,
		pq.Array(post.MediaURLs),
		post.AutosavedAt,
		post.UpdatedAt,
		post.ID,
		post.UserID,
	}

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.ExecContext(ctx, query, args...)
	} else {
		result, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affected > 0, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ListScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1 AND scheduled_for IS NOT NULL AND scheduled_for >= $2 AND scheduled_for <= $3
		ORDER BY scheduled_for ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpdateSchedule moves a post to a new scheduled slot and forces its status.
// Returns the number of affected rows; zero means the post no longer exists,
// which callers treat as a silent no-op.
func (r *postRepository) UpdateSchedule(ctx context.Context, postID, userID int64, scheduledFor time.Time, status string) (int64, error) {
	query := `
		UPDATE posts
		SET scheduled_for = $1,
			status = $2,
			updated_at = $3
		WHERE id = $4 AND user_id = $5
	`
	result, err := r.db.ExecContext(ctx, query, scheduledFor, status, time.Now(), postID, userID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			published_at = $2,
			updated_at = $3
		WHERE id = $4 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, publishedAt, time.Now(), postID, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
