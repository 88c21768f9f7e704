package service

import (
	"context"
	"errors"
	"testing"

	"github.com/postdeckhq/postdeck/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFallbackIsDeterministic(t *testing.T) {
	s := NewCaptionService(nil)

	req := &transfer.CaptionRequest{
		Topic:     "Fall Sale",
		Tone:      ToneWitty,
		Purpose:   PurposeEngagement,
		Platforms: []string{"instagram", "linkedin"},
	}

	first, err := s.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := s.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "instagram", first[0].Platform)
	assert.Equal(t, "linkedin", first[1].Platform)
	assert.Contains(t, first[0].Caption, "Fall Sale")
	assert.NotEmpty(t, first[0].Hashtags)
}

func TestGenerateRejectsEmptyTopic(t *testing.T) {
	s := NewCaptionService(nil)

	_, err := s.Generate(context.Background(), &transfer.CaptionRequest{Topic: "   "})
	assert.Error(t, err)

	_, err = s.Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerateDefaultsToInstagramWhenNoPlatforms(t *testing.T) {
	s := NewCaptionService(nil)

	captions, err := s.Generate(context.Background(), &transfer.CaptionRequest{
		Topic: "New opening hours",
		Tone:  ToneChill,
	})
	require.NoError(t, err)
	require.Len(t, captions, 1)
	assert.Equal(t, "instagram", captions[0].Platform)
}

func TestGenerateUnknownToneFallsBackToProfessional(t *testing.T) {
	s := NewCaptionService(nil)

	unknown, err := s.Generate(context.Background(), &transfer.CaptionRequest{
		Topic:     "Launch day",
		Tone:      "sarcastic",
		Platforms: []string{"instagram"},
	})
	require.NoError(t, err)

	professional, err := s.Generate(context.Background(), &transfer.CaptionRequest{
		Topic:     "Launch day",
		Tone:      ToneProfessional,
		Platforms: []string{"instagram"},
	})
	require.NoError(t, err)

	assert.Equal(t, professional[0].Caption, unknown[0].Caption)
}

func TestGenerateUnknownPlatformKeepsRequestedName(t *testing.T) {
	s := NewCaptionService(nil)

	captions, err := s.Generate(context.Background(), &transfer.CaptionRequest{
		Topic:     "Launch day",
		Tone:      ToneProfessional,
		Platforms: []string{"myspace"},
	})
	require.NoError(t, err)
	require.Len(t, captions, 1)
	assert.Equal(t, "myspace", captions[0].Platform)
	assert.Contains(t, captions[0].Caption, "Launch day")
}

func TestGenerateUsesRemoteWhenAvailable(t *testing.T) {
	llm := &fakeLLM{response: `[{"platform": "instagram", "caption": "remote caption", "hashtags": ["#x"]}]`}
	s := NewCaptionService(llm)

	captions, err := s.Generate(context.Background(), &transfer.CaptionRequest{
		Topic:     "Fall Sale",
		Platforms: []string{"instagram"},
	})
	require.NoError(t, err)
	require.Len(t, captions, 1)
	assert.Equal(t, "remote caption", captions[0].Caption)
	assert.Equal(t, 1, llm.calls)
}

func TestGenerateRemoteFailureFallsBack(t *testing.T) {
	llm := &fakeLLM{err: errors.New("backend down")}
	s := NewCaptionService(llm)

	captions, err := s.Generate(context.Background(), &transfer.CaptionRequest{
		Topic:     "Fall Sale",
		Tone:      ToneProfessional,
		Platforms: []string{"instagram"},
	})
	require.NoError(t, err)
	require.Len(t, captions, 1)
	assert.Contains(t, captions[0].Caption, "Fall Sale")
}

func TestGenerateRemoteFencedJSONAccepted(t *testing.T) {
	llm := &fakeLLM{response: "```json\n[{\"platform\": \"instagram\", \"caption\": \"fenced\", \"hashtags\": []}]\n```"}
	s := NewCaptionService(llm)

	captions, err := s.Generate(context.Background(), &transfer.CaptionRequest{
		Topic:     "Fall Sale",
		Platforms: []string{"instagram"},
	})
	require.NoError(t, err)
	require.Len(t, captions, 1)
	assert.Equal(t, "fenced", captions[0].Caption)
}
