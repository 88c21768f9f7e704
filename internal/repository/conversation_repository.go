package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postdeckhq/postdeck/internal/models"
)

type ConversationRepository interface {
	Create(ctx context.Context, userID int64) (int64, error)
	CheckByUserID(ctx context.Context, conversationID, userID int64) (bool, error)
	AppendTurn(ctx context.Context, turn *models.ConversationTurn) (int64, error)
	ListRecentTurns(ctx context.Context, conversationID int64, limit int) ([]*models.ConversationTurn, error)
}

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, userID int64) (int64, error) {
	query := `INSERT INTO conversations (user_id) VALUES ($1) RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *conversationRepository) CheckByUserID(ctx context.Context, conversationID, userID int64) (bool, error) {
	query := "SELECT 1 FROM conversations WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, conversationID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *conversationRepository) AppendTurn(ctx context.Context, turn *models.ConversationTurn) (int64, error) {
	query := `
		INSERT INTO conversation_turns (conversation_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, turn.ConversationID, turn.Role, turn.Content).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

// ListRecentTurns returns the trailing turns in chronological order.
func (r *conversationRepository) ListRecentTurns(ctx context.Context, conversationID int64, limit int) ([]*models.ConversationTurn, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_turns
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var turns []*models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		turns = append(turns, &t)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
