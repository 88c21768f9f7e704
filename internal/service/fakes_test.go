package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
)

// In-memory repository doubles shared across the service tests.

type fakePostRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*models.Post

	insertErr error
	updateErr error
	inserts   int
	updates   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1, posts: make(map[int64]*models.Post)}
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Platforms = append([]string(nil), p.Platforms...)
	cp.MediaURLs = append([]string(nil), p.MediaURLs...)
	cp.PlatformCaptions = make(models.PlatformCaptions, len(p.PlatformCaptions))
	for k, v := range p.PlatformCaptions {
		cp.PlatformCaptions[k] = v
	}
	return &cp
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(p), nil
}

func (f *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID != userID || p.ScheduledFor == nil {
			continue
		}
		if p.ScheduledFor.Before(from) || p.ScheduledFor.After(to) {
			continue
		}
		out = append(out, clonePost(p))
	}
	// Matches the ORDER BY scheduled_for ASC of the real query.
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledFor.Before(*out[j].ScheduledFor)
	})
	return out, nil
}

func (f *fakePostRepo) Insert(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	id := f.nextID
	f.nextID++
	cp := clonePost(post)
	cp.ID = id
	f.posts[id] = cp
	return id, nil
}

func (f *fakePostRepo) Update(ctx context.Context, tx *sql.Tx, post *models.Post) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return false, f.updateErr
	}
	existing, ok := f.posts[post.ID]
	if !ok || existing.UserID != post.UserID {
		return false, nil
	}
	if existing.UpdatedAt.After(post.UpdatedAt) {
		return false, nil
	}
	f.posts[post.ID] = clonePost(post)
	return true, nil
}

func (f *fakePostRepo) UpdateSchedule(ctx context.Context, postID, userID int64, scheduledFor time.Time, status string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	t := scheduledFor
	p.ScheduledFor = &t
	p.Status = status
	p.UpdatedAt = time.Now()
	return 1, nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, status string, postID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return errors.New("post not found")
	}
	p.Status = status
	return nil
}

func (f *fakePostRepo) MarkPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok || p.Status != models.PostStatusScheduled {
		return nil
	}
	p.Status = models.PostStatusPublished
	t := publishedAt
	p.PublishedAt = &t
	return nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	return ok && p.UserID == userID, nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, id)
	return nil
}

type fakePostMediaRepo struct {
	mu    sync.Mutex
	links []models.PostMedia

	createErr error
}

func (f *fakePostMediaRepo) Create(ctx context.Context, tx *sql.Tx, pm *models.PostMedia) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.links = append(f.links, *pm)
	return nil
}

func (f *fakePostMediaRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PostMedia
	for i := range f.links {
		if f.links[i].PostID == postID {
			pm := f.links[i]
			out = append(out, &pm)
		}
	}
	return out, nil
}

func (f *fakePostMediaRepo) RemoveByPostID(ctx context.Context, postID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.links[:0]
	for _, link := range f.links {
		if link.PostID != postID {
			kept = append(kept, link)
		}
	}
	f.links = kept
	return nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	nextID        int64
	conversations map[int64]int64 // conversation id -> owner
	turns         map[int64][]*models.ConversationTurn
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		nextID:        1,
		conversations: make(map[int64]int64),
		turns:         make(map[int64][]*models.ConversationTurn),
	}
}

func (f *fakeConversationRepo) Create(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.conversations[id] = userID
	return id, nil
}

func (f *fakeConversationRepo) CheckByUserID(ctx context.Context, conversationID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.conversations[conversationID]
	return ok && owner == userID, nil
}

func (f *fakeConversationRepo) AppendTurn(ctx context.Context, turn *models.ConversationTurn) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := *turn
	t.ID = int64(len(f.turns[turn.ConversationID]) + 1)
	f.turns[turn.ConversationID] = append(f.turns[turn.ConversationID], &t)
	return t.ID, nil
}

func (f *fakeConversationRepo) ListRecentTurns(ctx context.Context, conversationID int64, limit int) ([]*models.ConversationTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	turns := f.turns[conversationID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]*models.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

type fakeCalendarEventRepo struct {
	events []*models.CalendarEvent
}

func (f *fakeCalendarEventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*models.CalendarEvent, error) {
	var out []*models.CalendarEvent
	for _, ev := range f.events {
		if ev.EventDate.Before(from) || ev.EventDate.After(to.Add(24*time.Hour)) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type fakeSettingsRepo struct {
	settings map[int64]*models.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*models.Settings)}
}

func (f *fakeSettingsRepo) Create(ctx context.Context, s *models.Settings) (int64, error) {
	f.settings[s.UserID] = s
	return s.UserID, nil
}

func (f *fakeSettingsRepo) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	s, ok := f.settings[userID]
	return s, ok, nil
}

func (f *fakeSettingsRepo) UpdateSettings(ctx context.Context, s *models.Settings, userID int64) error {
	f.settings[userID] = s
	return nil
}

type notification struct {
	userID  int64
	level   string
	message string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(userID int64, level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{userID: userID, level: level, message: message})
}

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}
