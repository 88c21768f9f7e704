package models

import "time"

// CalendarEvent is a read-only annotation shown on the calendar. The core
// never mutates these rows; they are seeded out of band.
type CalendarEvent struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	EventDate time.Time `db:"event_date" json:"event_date"`
	EventType string    `db:"event_type" json:"event_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	EventTypeHoliday       = "holiday"
	EventTypeProductLaunch = "product_launch"
	EventTypeIndustry      = "industry"
	EventTypeCustom        = "custom"
)
