package service

import (
	"context"
	"errors"
	"testing"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchIntentPriorityOrder(t *testing.T) {
	// A message matching several rules resolves to the earliest one.
	rule, ok := matchIntent("give me content ideas and some hashtag suggestions")
	require.True(t, ok)
	assert.Equal(t, "content-ideas", rule.name)

	rule, ok = matchIntent("can you write a caption with hashtags?")
	require.True(t, ok)
	assert.Equal(t, "caption-writing", rule.name)

	rule, ok = matchIntent("WHEN SHOULD I POST on linkedin")
	require.True(t, ok)
	assert.Equal(t, "posting-time", rule.name)

	_, ok = matchIntent("tell me a joke")
	assert.False(t, ok)
}

func TestFallbackAnswerUsesBusinessContext(t *testing.T) {
	answer := fallbackAnswer("content ideas please", &transfer.BusinessContext{Company: "Brew & Co"})
	assert.Contains(t, answer, "Brew & Co")

	answer = fallbackAnswer("content ideas please", nil)
	assert.Contains(t, answer, "your business")
}

func TestReplyCreatesConversationAndPersistsTurns(t *testing.T) {
	cr := newFakeConversationRepo()
	s := NewAssistantService(cr, nil)

	resp, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{
		Message: "what are good hashtags?",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ConversationID)
	assert.NotEmpty(t, resp.Response)
	assert.Empty(t, resp.Error)

	turns := cr.turns[resp.ConversationID]
	require.Len(t, turns, 2)
	assert.Equal(t, models.TurnRoleUser, turns[0].Role)
	assert.Equal(t, "what are good hashtags?", turns[0].Content)
	assert.Equal(t, models.TurnRoleAssistant, turns[1].Role)
	assert.Equal(t, resp.Response, turns[1].Content)
}

func TestReplyContinuesExistingConversation(t *testing.T) {
	cr := newFakeConversationRepo()
	s := NewAssistantService(cr, nil)

	first, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{Message: "content ideas?"})
	require.NoError(t, err)

	second, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{
		Message:        "and posting times?",
		ConversationID: first.ConversationID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Len(t, cr.turns[first.ConversationID], 4)
}

func TestReplyRejectsForeignConversation(t *testing.T) {
	cr := newFakeConversationRepo()
	s := NewAssistantService(cr, nil)

	first, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{Message: "content ideas?"})
	require.NoError(t, err)

	_, err = s.Reply(context.Background(), 8, &transfer.AssistantRequest{
		Message:        "hijack attempt",
		ConversationID: first.ConversationID,
	})
	assert.Error(t, err)
}

func TestReplyRejectsEmptyMessage(t *testing.T) {
	s := NewAssistantService(newFakeConversationRepo(), nil)

	_, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{Message: "  "})
	assert.Error(t, err)
}

func TestReplyBackendFailureDegradesWithErrorFlag(t *testing.T) {
	cr := newFakeConversationRepo()
	llm := &fakeLLM{err: errors.New("quota exceeded")}
	s := NewAssistantService(cr, llm)

	resp, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{
		Message: "what are good hashtags?",
	})
	require.NoError(t, err)
	assert.Equal(t, "generation backend unavailable", resp.Error)
	assert.NotEmpty(t, resp.Response)
	// The fallback text is still persisted as the assistant turn.
	assert.Len(t, cr.turns[resp.ConversationID], 2)
}

func TestReplyUsesRemoteWhenAvailable(t *testing.T) {
	cr := newFakeConversationRepo()
	llm := &fakeLLM{response: "remote answer"}
	s := NewAssistantService(cr, llm)

	resp, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{Message: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "remote answer", resp.Response)
	assert.Empty(t, resp.Error)
}

func TestHistoryRequiresOwnership(t *testing.T) {
	cr := newFakeConversationRepo()
	s := NewAssistantService(cr, nil)

	first, err := s.Reply(context.Background(), 7, &transfer.AssistantRequest{Message: "content ideas?"})
	require.NoError(t, err)

	turns, err := s.History(context.Background(), 7, first.ConversationID)
	require.NoError(t, err)
	assert.Len(t, turns, 2)

	_, err = s.History(context.Background(), 8, first.ConversationID)
	assert.Error(t, err)
}
