package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
)

type CalendarEventRepository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.CalendarEvent, error)
}

type calendarEventRepository struct {
	db *sql.DB
}

func NewCalendarEventRepository(db *sql.DB) CalendarEventRepository {
	return &calendarEventRepository{db: db}
}

// ListBetween compares by calendar day only; events carry no time component.
func (r *calendarEventRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.CalendarEvent, error) {
	query := `
		SELECT id, name, event_date, event_type, created_at
		FROM calendar_events
		WHERE event_date >= $1::date AND event_date <= $2::date
		ORDER BY event_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var events []*models.CalendarEvent
	for rows.Next() {
		var ev models.CalendarEvent
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.EventDate, &ev.EventType, &ev.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
