package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// PlatformCaptions maps a platform name to its platform-specific caption.
// Stored as a jsonb column.
type PlatformCaptions map[string]string

func (pc PlatformCaptions) Value() (driver.Value, error) {
	if pc == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(pc)
}

func (pc *PlatformCaptions) Scan(src interface{}) error {
	if src == nil {
		*pc = PlatformCaptions{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("platform_captions: expected []byte")
	}
	return json.Unmarshal(b, pc)
}

type Post struct {
	ID               int64            `db:"id" json:"id"`
	UserID           int64            `db:"user_id" json:"user_id"`
	Title            string           `db:"title" json:"title"`
	Caption          string           `db:"caption" json:"caption"`
	PlatformCaptions PlatformCaptions `db:"platform_captions" json:"platform_captions"`
	Platforms        []string         `db:"platforms" json:"platforms"`
	Status           string           `db:"status" json:"status"` // draft, scheduled, published, failed
	ScheduledFor     *time.Time       `db:"scheduled_for" json:"scheduled_for"`
	PublishedAt      *time.Time       `db:"published_at" json:"published_at"`
	MediaURLs        []string         `db:"media_urls" json:"media_urls"`
	AutosavedAt      *time.Time       `db:"autosaved_at" json:"autosaved_at"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	FileName      string    `db:"file_name" json:"file_name"`
	FileType      string    `db:"file_type" json:"file_type"`
	MediaKind     string    `db:"media_kind" json:"media_kind"` // image or video
	FileSize      int64     `db:"file_size" json:"file_size"`
	FileURL       string    `db:"file_url" json:"file_url"`
	VariantsReady bool      `db:"variants_ready" json:"variants_ready"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id" json:"post_id"`
	AssetID      int64     `db:"asset_id" json:"asset_id"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const (
	PlatformInstagram = "instagram"
	PlatformTiktok    = "tiktok"
	PlatformLinkedin  = "linkedin"
	PlatformTwitter   = "twitter"
)

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

var knownPlatforms = map[string]struct{}{
	PlatformInstagram: {},
	PlatformTiktok:    {},
	PlatformLinkedin:  {},
	PlatformTwitter:   {},
}

func IsKnownPlatform(platform string) bool {
	_, ok := knownPlatforms[platform]
	return ok
}
