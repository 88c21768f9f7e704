package models

import "time"

type Settings struct {
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	Company          string    `db:"company" json:"company"`
	Industry         string    `db:"industry" json:"industry"`
	DefaultPostHour  int       `db:"default_post_hour" json:"default_post_hour"`
	ReschedulePolicy string    `db:"reschedule_policy" json:"reschedule_policy"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ReschedulePolicyPromote  = "promote"
	ReschedulePolicyRestrict = "restrict"
)
