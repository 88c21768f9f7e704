package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

const (
	StepCopy     = "copy"
	StepAssets   = "assets"
	StepSchedule = "schedule"
)

const (
	ScheduleModeNow   = "now"
	ScheduleModeLater = "later"
)

var stepOrder = map[string]int{
	StepCopy:     1,
	StepAssets:   2,
	StepSchedule: 3,
}

var (
	ErrNoSession         = errors.New("no active composer session")
	ErrNoPlatforms       = errors.New("select at least one platform")
	ErrNoCaption         = errors.New("caption cannot be empty")
	ErrUnknownStep       = errors.New("unknown composer step")
	ErrScheduleIncomplete = errors.New("scheduling for later requires a date and a time")
)

type assetRef struct {
	id  int64
	url string
}

// composerSession owns the in-progress post exclusively until commit. All
// mutation goes through the session mutex; the session context is canceled
// on close so late autosave completions cannot apply.
type composerSession struct {
	mu sync.Mutex

	userID  int64
	postID  int64
	step    string
	title   string
	topic   string
	tone    string
	purpose string

	platforms        []string
	generated        []transfer.GeneratedCaption
	platformCaptions map[string]string
	selectedCaption  string
	captionOverride  string

	assets      []assetRef
	autosavedAt *time.Time
	dirty       bool

	ctx      context.Context
	cancel   context.CancelFunc
	autosave *autosaver
}

func (cs *composerSession) effectiveCaption() string {
	if strings.TrimSpace(cs.captionOverride) != "" {
		return cs.captionOverride
	}
	return cs.selectedCaption
}

func (cs *composerSession) hasContent() bool {
	return strings.TrimSpace(cs.topic) != "" || strings.TrimSpace(cs.effectiveCaption()) != ""
}

func (cs *composerSession) mediaURLs() []string {
	urls := make([]string, 0, len(cs.assets))
	for _, a := range cs.assets {
		urls = append(urls, a.url)
	}
	return urls
}

// snapshot builds the persistable draft shape from the current session state.
func (cs *composerSession) snapshot() *models.Post {
	captions := make(models.PlatformCaptions, len(cs.platformCaptions))
	for k, v := range cs.platformCaptions {
		captions[k] = v
	}

	return &models.Post{
		ID:               cs.postID,
		UserID:           cs.userID,
		Title:            cs.title,
		Caption:          cs.effectiveCaption(),
		PlatformCaptions: captions,
		Platforms:        append([]string(nil), cs.platforms...),
		MediaURLs:        cs.mediaURLs(),
	}
}

func (cs *composerSession) state() *transfer.ComposerState {
	return &transfer.ComposerState{
		PostID:           cs.postID,
		Step:             cs.step,
		Title:            cs.title,
		Topic:            cs.topic,
		Tone:             cs.tone,
		Purpose:          cs.purpose,
		Platforms:        append([]string(nil), cs.platforms...),
		Caption:          cs.effectiveCaption(),
		PlatformCaptions: cs.platformCaptions,
		Generated:        cs.generated,
		MediaURLs:        cs.mediaURLs(),
		AutosavedAt:      cs.autosavedAt,
		Dirty:            cs.dirty,
	}
}

type ComposerService interface {
	Open(ctx context.Context, userID, postID int64) (*transfer.ComposerState, error)
	State(ctx context.Context, userID int64) (*transfer.ComposerState, error)
	Update(ctx context.Context, userID int64, upd *transfer.ComposerUpdate) (*transfer.ComposerState, error)
	Generate(ctx context.Context, userID int64) ([]transfer.GeneratedCaption, error)
	SelectCaption(ctx context.Context, userID int64, platform string) (*transfer.ComposerState, error)
	SetStep(ctx context.Context, userID int64, step string) (*transfer.ComposerState, error)
	AttachMedia(ctx context.Context, userID int64, file []byte) (int64, *transfer.ComposerState, error)
	AssetIDs(ctx context.Context, userID int64) ([]int64, error)
	SaveDraft(ctx context.Context, userID int64) (*transfer.ComposerState, error)
	Commit(ctx context.Context, userID int64, sched *transfer.ScheduleRequest) (int64, time.Duration, error)
	Close(ctx context.Context, userID int64, save bool) error
}

type composerService struct {
	db       *sql.DB
	pr       repository.PostRepository
	pm       repository.PostMediaRepository
	ps       PostService
	captions CaptionService
	storage  *StorageService
	notifier Notifier

	autosaveDelay time.Duration

	mu       sync.RWMutex
	sessions map[int64]*composerSession
}

func NewComposerService(
	db *sql.DB,
	pr repository.PostRepository,
	pm repository.PostMediaRepository,
	ps PostService,
	captions CaptionService,
	storage *StorageService,
	notifier Notifier,
	autosaveDelay time.Duration) ComposerService {
	return &composerService{
		db:            db,
		pr:            pr,
		pm:            pm,
		ps:            ps,
		captions:      captions,
		storage:       storage,
		notifier:      notifier,
		autosaveDelay: autosaveDelay,
		sessions:      make(map[int64]*composerSession),
	}
}

func (s *composerService) session(userID int64) (*composerSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return cs, nil
}

// Open creates (or returns) the user's composer session. With a post ID it
// re-populates from a persisted draft; a draft that already has platforms and
// a caption resumes at the assets step.
func (s *composerService) Open(ctx context.Context, userID, postID int64) (*transfer.ComposerState, error) {
	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok && postID == 0 {
		s.mu.Unlock()
		existing.mu.Lock()
		defer existing.mu.Unlock()
		return existing.state(), nil
	}
	s.mu.Unlock()

	sessionCtx, cancel := context.WithCancel(context.Background())
	cs := &composerSession{
		userID:           userID,
		step:             StepCopy,
		tone:             ToneProfessional,
		purpose:          PurposeAnnouncement,
		platformCaptions: make(map[string]string),
		ctx:              sessionCtx,
		cancel:           cancel,
	}
	cs.autosave = newAutosaver(sessionCtx, s.autosaveDelay, func(saveCtx context.Context) {
		s.autosaveFire(saveCtx, cs)
	})

	if postID != 0 {
		post, err := s.ps.PostInfo(ctx, postID, userID)
		if err != nil {
			cancel()
			return nil, err
		}
		cs.postID = post.ID
		cs.title = post.Title
		cs.topic = post.Title
		cs.platforms = post.Platforms
		cs.selectedCaption = post.Caption
		for platform, caption := range post.PlatformCaptions {
			cs.platformCaptions[platform] = caption
		}
		links, err := s.pm.ListByPostID(ctx, post.ID)
		if err != nil {
			slog.Info(err.Error())
		}
		for i, url := range post.MediaURLs {
			ref := assetRef{url: url}
			if i < len(links) {
				ref.id = links[i].AssetID
			}
			cs.assets = append(cs.assets, ref)
		}
		cs.autosavedAt = post.AutosavedAt

		if len(cs.platforms) > 0 && cs.effectiveCaption() != "" {
			cs.step = StepAssets
		}
	}

	s.mu.Lock()
	if old, ok := s.sessions[userID]; ok {
		old.autosave.Cancel()
		old.cancel()
	}
	s.sessions[userID] = cs
	s.mu.Unlock()

	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state(), nil
}

func (s *composerService) State(ctx context.Context, userID int64) (*transfer.ComposerState, error) {
	cs, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state(), nil
}

func (s *composerService) Update(ctx context.Context, userID int64, upd *transfer.ComposerUpdate) (*transfer.ComposerState, error) {
	cs, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if upd.Title != nil {
		cs.title = *upd.Title
	}
	if upd.Topic != nil {
		cs.topic = *upd.Topic
	}
	if upd.Tone != nil {
		cs.tone = *upd.Tone
	}
	if upd.Purpose != nil {
		cs.purpose = *upd.Purpose
	}
	if upd.Platforms != nil {
		cs.platforms = nil
		for _, p := range *upd.Platforms {
			if models.IsKnownPlatform(p) {
				cs.platforms = append(cs.platforms, p)
			}
		}
	}
	if upd.Caption != nil {
		cs.captionOverride = *upd.Caption
	}

	cs.dirty = true
	cs.autosave.NotifyChanged()

	return cs.state(), nil
}

// Generate runs the caption responder once and replaces any previously
// generated set, reseeding the per-platform caption map.
func (s *composerService) Generate(ctx context.Context, userID int64) ([]transfer.GeneratedCaption, error) {
	cs, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	req := &transfer.CaptionRequest{
		Topic:     cs.topic,
		Tone:      cs.tone,
		Purpose:   cs.purpose,
		Platforms: append([]string(nil), cs.platforms...),
	}
	cs.mu.Unlock()

	captions, err := s.captions.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.generated = captions
	cs.platformCaptions = make(map[string]string, len(captions))
	for _, c := range captions {
		cs.platformCaptions[c.Platform] = c.Caption
	}
	if len(captions) > 0 && cs.selectedCaption == "" {
		cs.selectedCaption = captions[0].Caption
	}
	cs.dirty = true
	cs.autosave.NotifyChanged()

	return captions, nil
}

func (s *composerService) SelectCaption(ctx context.Context, userID int64, platform string) (*transfer.ComposerState, error) {
	cs, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	caption, ok := cs.platformCaptions[platform]
	if !ok {
		return nil, fmt.Errorf("no generated caption for platform %s", platform)
	}

	cs.selectedCaption = caption
	cs.dirty = true
	cs.autosave.NotifyChanged()

	return cs.state(), nil
}

// SetStep moves between composer steps. Backward navigation is always
// allowed; moving forward past the copy step requires at least one platform
// and a non-empty caption.
func (s *composerService) SetStep(ctx context.Context, userID int64, step string) (*transfer.ComposerState, error) {
	cs, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	target, ok := stepOrder[step]
	if !ok {
		return nil, ErrUnknownStep
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	current := stepOrder[cs.step]
	if target > current {
		if len(cs.platforms) == 0 {
			return nil, ErrNoPlatforms
		}
		if strings.TrimSpace(cs.effectiveCaption()) == "" {
			return nil, ErrNoCaption
		}
	}

	cs.step = step
	return cs.state(), nil
}

func (s *composerService) AttachMedia(ctx context.Context, userID int64, file []byte) (int64, *transfer.ComposerState, error) {
	cs, err := s.session(userID)
	if err != nil {
		return 0, nil, err
	}

	asset, err := s.storage.Upload(ctx, userID, file)
	if err != nil {
		return 0, nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.assets = append(cs.assets, assetRef{id: asset.ID, url: asset.FileURL})
	cs.dirty = true
	cs.autosave.NotifyChanged()

	return asset.ID, cs.state(), nil
}

func (s *composerService) AssetIDs(ctx context.Context, userID int64) ([]int64, error) {
	cs, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	var ids []int64
	for _, a := range cs.assets {
		if a.id != 0 {
			ids = append(ids, a.id)
		}
	}
	return ids, nil
}

func (s *composerService) autosaveFire(ctx context.Context, cs *composerSession) {
	cs.mu.Lock()
	if !cs.hasContent() {
		cs.mu.Unlock()
		return
	}
	draft := cs.snapshot()
	cs.mu.Unlock()

	id, err := s.ps.UpsertDraft(ctx, draft)

	if ctx.Err() != nil {
		// Session ended while the upsert was in flight; drop the result.
		return
	}

	if err != nil {
		s.notifier.Notify(cs.userID, NotifyError, "Autosave failed — your changes are still in the editor")
		return
	}

	now := time.Now()
	cs.mu.Lock()
	cs.postID = id
	cs.autosavedAt = &now
	cs.dirty = false
	cs.mu.Unlock()

	s.notifier.Notify(cs.userID, NotifySuccess, "Draft autosaved")
}

// SaveDraft is the explicit save path: cancels any pending autosave timer and
// upserts synchronously.
func (s *composerService) SaveDraft(ctx context.Context, userID int64) (*transfer.ComposerState, error) {
	cs, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	cs.autosave.Cancel()

	cs.mu.Lock()
	if !cs.hasContent() {
		cs.mu.Unlock()
		return nil, errors.New("nothing to save")
	}
	draft := cs.snapshot()
	cs.mu.Unlock()

	id, err := s.ps.UpsertDraft(ctx, draft)
	if err != nil {
		s.notifier.Notify(userID, NotifyError, "Could not save draft")
		return nil, err
	}

	now := time.Now()
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.postID = id
	cs.autosavedAt = &now
	cs.dirty = false

	s.notifier.Notify(userID, NotifySuccess, "Draft saved")
	return cs.state(), nil
}

// Commit persists the finished post in one transaction. Mode "now" publishes
// immediately; mode "later" schedules for the chosen date combined with the
// chosen time of day and reports the delay until then. On failure the
// session is left intact with nothing written.
func (s *composerService) Commit(ctx context.Context, userID int64, sched *transfer.ScheduleRequest) (int64, time.Duration, error) {
	cs, err := s.session(userID)
	if err != nil {
		return 0, 0, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if len(cs.platforms) == 0 {
		return 0, 0, ErrNoPlatforms
	}
	if strings.TrimSpace(cs.effectiveCaption()) == "" {
		return 0, 0, ErrNoCaption
	}
	if sched == nil {
		return 0, 0, errors.New("schedule choice is required")
	}

	post := cs.snapshot()
	now := time.Now()
	post.UpdatedAt = now

	var delay time.Duration

	switch sched.Mode {
	case ScheduleModeNow:
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
	case ScheduleModeLater:
		if sched.Date == "" || sched.Time == "" {
			return 0, 0, ErrScheduleIncomplete
		}
		scheduledFor, err := combineDateTime(sched.Date, sched.Time)
		if err != nil {
			return 0, 0, err
		}
		post.Status = models.PostStatusScheduled
		post.ScheduledFor = &scheduledFor
		delay = time.Until(scheduledFor)
		if delay < 0 {
			delay = 0
		}
	default:
		return 0, 0, fmt.Errorf("unknown schedule mode %q", sched.Mode)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	postID := post.ID
	if postID == 0 {
		postID, err = s.pr.Insert(ctx, tx, post)
		if err != nil {
			return 0, 0, fmt.Errorf("error creating post: %w", err)
		}
	} else {
		if _, err = s.pr.Update(ctx, tx, post); err != nil {
			return 0, 0, fmt.Errorf("error updating post: %w", err)
		}
	}

	for i, asset := range cs.assets {
		if asset.id == 0 {
			continue
		}
		pm := models.PostMedia{
			PostID:       postID,
			AssetID:      asset.id,
			DisplayOrder: i,
		}
		if err = s.pm.Create(ctx, tx, &pm); err != nil {
			return 0, 0, fmt.Errorf("error linking media: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	cs.autosave.Cancel()
	cs.cancel()

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	return postID, delay, nil
}

// Close ends the session. With save set, non-empty unsaved content is
// persisted as a draft first; otherwise the changes are discarded.
func (s *composerService) Close(ctx context.Context, userID int64, save bool) error {
	cs, err := s.session(userID)
	if err != nil {
		return err
	}

	if save {
		cs.mu.Lock()
		needsSave := cs.dirty && cs.hasContent()
		cs.mu.Unlock()
		if needsSave {
			if _, err := s.SaveDraft(ctx, userID); err != nil {
				return err
			}
		}
	}

	cs.autosave.Cancel()
	cs.cancel()

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	return nil
}

// combineDateTime builds the effective scheduled timestamp from a calendar
// date and a time of day, in server-local time.
func combineDateTime(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}
