package transfer

import "time"

// ComposerUpdate carries partial edits to the in-progress draft. Nil pointers
// mean "field untouched", so a single endpoint serves every step-1 control.
type ComposerUpdate struct {
	Title     *string   `json:"title,omitempty"`
	Topic     *string   `json:"topic,omitempty"`
	Tone      *string   `json:"tone,omitempty"`
	Purpose   *string   `json:"purpose,omitempty"`
	Platforms *[]string `json:"platforms,omitempty"`
	Caption   *string   `json:"caption,omitempty"`
}

type ScheduleRequest struct {
	Mode string `json:"mode"` // "now" or "later"
	Date string `json:"date"` // 2006-01-02, required for "later"
	Time string `json:"time"` // 15:04, required for "later"
}

type ComposerState struct {
	PostID           int64              `json:"post_id"`
	Step             string             `json:"step"`
	Title            string             `json:"title"`
	Topic            string             `json:"topic"`
	Tone             string             `json:"tone"`
	Purpose          string             `json:"purpose"`
	Platforms        []string           `json:"platforms"`
	Caption          string             `json:"caption"`
	PlatformCaptions map[string]string  `json:"platform_captions"`
	Generated        []GeneratedCaption `json:"generated,omitempty"`
	MediaURLs        []string           `json:"media_urls"`
	AutosavedAt      *time.Time         `json:"autosaved_at,omitempty"`
	Dirty            bool               `json:"dirty"`
}

type RescheduleRequest struct {
	PostID int64  `json:"post_id"`
	Day    string `json:"day"` // 2006-01-02
	Force  bool   `json:"force"`
}

type CalendarDay struct {
	Date   string               `json:"date"`
	Posts  []*CalendarPost      `json:"posts"`
	Events []*CalendarEventItem `json:"events"`
}

type CalendarPost struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Caption      string    `json:"caption"`
	Platforms    []string  `json:"platforms"`
	Status       string    `json:"status"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

type CalendarEventItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
