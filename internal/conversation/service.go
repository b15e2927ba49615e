package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Service records chat turns around the dialogue core
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordTurn appends the user utterance and the assistant reply
func (s *Service) RecordTurn(ctx context.Context, sessionID, utterance, reply string) error {
	if err := s.repo.AddMessage(ctx, sessionID, schema.UserMessage(utterance)); err != nil {
		return fmt.Errorf("failed to record user message: %w", err)
	}
	if err := s.repo.AddMessage(ctx, sessionID, schema.AssistantMessage(reply, nil)); err != nil {
		return fmt.Errorf("failed to record assistant message: %w", err)
	}
	return nil
}

// GetHistory returns the whole transcript
func (s *Service) GetHistory(ctx context.Context, sessionID string) (*History, error) {
	return s.repo.Load(ctx, sessionID)
}

// Transcript renders the last maxMessages messages, one per line
func (s *Service) Transcript(ctx context.Context, sessionID string, maxMessages int) (string, error) {
	history, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, msg := range trimTail(history.Messages, maxMessages) {
		switch msg.Role {
		case schema.User:
			b.WriteString("you: " + msg.Content + "\n")
		case schema.Assistant:
			b.WriteString("bot: " + msg.Content + "\n")
		}
	}
	return b.String(), nil
}

func trimTail(messages []*schema.Message, maxMessages int) []*schema.Message {
	if maxMessages <= 0 || len(messages) <= maxMessages {
		return messages
	}
	return messages[len(messages)-maxMessages:]
}
