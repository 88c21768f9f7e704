package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/postdeckhq/postdeck/internal/transfer"
)

type CaptionService interface {
	Generate(ctx context.Context, req *transfer.CaptionRequest) ([]transfer.GeneratedCaption, error)
}

type captionService struct {
	llm LLMClient
}

func NewCaptionService(llm LLMClient) CaptionService {
	return &captionService{llm: llm}
}

// Generate returns one caption bundle per requested platform, in request
// order. The remote backend is preferred when configured; the deterministic
// table is the fallback when it is absent or its output cannot be used.
func (s *captionService) Generate(ctx context.Context, req *transfer.CaptionRequest) ([]transfer.GeneratedCaption, error) {
	if req == nil || strings.TrimSpace(req.Topic) == "" {
		err := errors.New("topic cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}

	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = []string{defaultPlatform}
	}

	if s.llm != nil {
		captions, err := s.generateRemote(ctx, req, platforms)
		if err == nil {
			return captions, nil
		}
		slog.Info("remote caption generation unavailable, using fallback", "error", err.Error())
	}

	return s.generateFallback(req, platforms), nil
}

func (s *captionService) generateRemote(ctx context.Context, req *transfer.CaptionRequest, platforms []string) ([]transfer.GeneratedCaption, error) {
	prompt := fmt.Sprintf(
		`Write one social media caption per platform for the topic %q.
Tone: %s. Purpose: %s. Platforms: %s.
Respond with ONLY a JSON array, one object per platform in the given order, shaped as:
[{"platform": "...", "caption": "...", "hashtags": ["..."], "suggestedEmojis": ["..."]}]`,
		req.Topic, req.Tone, req.Purpose, strings.Join(platforms, ", "))

	out, err := s.llm.GenerateText(ctx, "You are a social media copywriter.", prompt)
	if err != nil {
		return nil, err
	}

	// Models occasionally wrap JSON in a markdown fence.
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")

	var captions []transfer.GeneratedCaption
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &captions); err != nil {
		return nil, fmt.Errorf("unexpected caption payload: %w", err)
	}
	if len(captions) == 0 {
		return nil, errors.New("empty caption payload")
	}

	return captions, nil
}

// generateFallback is a pure function of its input: no randomness, no state.
// Unknown tones or platforms degrade to the professional/instagram row
// instead of failing.
func (s *captionService) generateFallback(req *transfer.CaptionRequest, platforms []string) []transfer.GeneratedCaption {
	tone := strings.ToLower(req.Tone)
	if _, ok := captionSkeletons[tone]; !ok {
		tone = defaultTone
	}

	captions := make([]transfer.GeneratedCaption, 0, len(platforms))
	for _, platform := range platforms {
		key := strings.ToLower(platform)
		skeleton, ok := captionSkeletons[tone][key]
		if !ok {
			skeleton = captionSkeletons[defaultTone][defaultPlatform]
		}

		hashtags, ok := platformHashtags[key]
		if !ok {
			hashtags = platformHashtags[defaultPlatform]
		}

		captions = append(captions, transfer.GeneratedCaption{
			Platform:        platform,
			Caption:         fmt.Sprintf(skeleton, req.Topic),
			Hashtags:        hashtags,
			SuggestedEmojis: toneEmojis[tone],
		})
	}

	return captions
}
