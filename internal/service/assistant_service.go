package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

const assistantHistoryWindow = 10

type AssistantService interface {
	Reply(ctx context.Context, userID int64, req *transfer.AssistantRequest) (*transfer.AssistantResponse, error)
	History(ctx context.Context, userID, conversationID int64) ([]*models.ConversationTurn, error)
}

type assistantService struct {
	cr  repository.ConversationRepository
	llm LLMClient
}

func NewAssistantService(cr repository.ConversationRepository, llm LLMClient) AssistantService {
	return &assistantService{cr: cr, llm: llm}
}

// Reply answers a chat message, creating the conversation on first use and
// persisting both turns. Backend failures never surface as errors: the
// response degrades to the canned intent answers instead.
func (s *assistantService) Reply(ctx context.Context, userID int64, req *transfer.AssistantRequest) (*transfer.AssistantResponse, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		err := errors.New("message cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}

	conversationID := req.ConversationID
	if conversationID == 0 {
		id, err := s.cr.Create(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("error creating conversation: %w", err)
		}
		conversationID = id
	} else {
		owned, err := s.cr.CheckByUserID(ctx, conversationID, userID)
		if err != nil {
			return nil, err
		}
		if !owned {
			err = errors.New("conversation doesn't exist")
			slog.Info(err.Error())
			return nil, err
		}
	}

	history, err := s.cr.ListRecentTurns(ctx, conversationID, assistantHistoryWindow)
	if err != nil {
		slog.Info(err.Error())
		history = nil
	}

	response := &transfer.AssistantResponse{ConversationID: conversationID}
	response.Response = s.answer(ctx, req, history, response)

	if _, err := s.cr.AppendTurn(ctx, &models.ConversationTurn{
		ConversationID: conversationID,
		Role:           models.TurnRoleUser,
		Content:        req.Message,
	}); err != nil {
		slog.Info(err.Error())
	}
	if _, err := s.cr.AppendTurn(ctx, &models.ConversationTurn{
		ConversationID: conversationID,
		Role:           models.TurnRoleAssistant,
		Content:        response.Response,
	}); err != nil {
		slog.Info(err.Error())
	}

	return response, nil
}

func (s *assistantService) answer(ctx context.Context, req *transfer.AssistantRequest, history []*models.ConversationTurn, response *transfer.AssistantResponse) string {
	if s.llm != nil {
		text, err := s.remoteAnswer(ctx, req, history)
		if err == nil {
			return text
		}
		slog.Info("remote assistant unavailable, using fallback", "error", err.Error())
		response.Error = "generation backend unavailable"
	}

	return fallbackAnswer(req.Message, req.Context)
}

func (s *assistantService) remoteAnswer(ctx context.Context, req *transfer.AssistantRequest, history []*models.ConversationTurn) (string, error) {
	system := "You are a friendly social media marketing assistant. Keep answers practical and concise."
	if req.Context != nil {
		if req.Context.Company != "" {
			system += fmt.Sprintf(" The user's company is %s.", req.Context.Company)
		}
		if req.Context.Industry != "" {
			system += fmt.Sprintf(" They operate in the %s industry.", req.Context.Industry)
		}
	}

	var sb strings.Builder
	for _, turn := range history {
		sb.WriteString(turn.Role)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("user: ")
	sb.WriteString(req.Message)

	return s.llm.GenerateText(ctx, system, sb.String())
}

func fallbackAnswer(message string, bizCtx *transfer.BusinessContext) string {
	if rule, ok := matchIntent(message); ok {
		return rule.answer(bizCtx)
	}
	return defaultAssistantAnswer
}

func (s *assistantService) History(ctx context.Context, userID, conversationID int64) ([]*models.ConversationTurn, error) {
	owned, err := s.cr.CheckByUserID(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		err = errors.New("conversation doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	return s.cr.ListRecentTurns(ctx, conversationID, assistantHistoryWindow*2)
}
