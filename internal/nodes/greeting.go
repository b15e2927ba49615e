package nodes

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"card_assistant/internal/core"
	"card_assistant/internal/logger"
	"card_assistant/internal/storage"
)

var greetingPattern = regexp.MustCompile(`(?i)^(hi|hello|hey|good morning|good afternoon|good evening|greetings?).*`)

// GreetingProvider supplies small talk for the greeting
type GreetingProvider interface {
	TimeOfDay(now time.Time) string
	WeatherPhrase(ctx context.Context) string
}

// GreetingNode answers greetings and drops any pending follow-up
type GreetingNode struct {
	store   storage.ContextStore
	greeter GreetingProvider
	now     func() time.Time
}

// NewGreetingNode creates a greeting node
func NewGreetingNode(store storage.ContextStore, greeter GreetingProvider, now func() time.Time) *GreetingNode {
	return &GreetingNode{store: store, greeter: greeter, now: now}
}

// IsGreeting reports whether text opens with a greeting word
func IsGreeting(text string) bool {
	return greetingPattern.MatchString(text)
}

// Execute clears the session context and greets when the utterance is a greeting
func (g *GreetingNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if !IsGreeting(input.UserMessage) {
		return core.Pass(), nil
	}

	if err := g.store.Clear(ctx, input.SessionID); err != nil {
		return core.NodeOutput{}, fmt.Errorf("failed to clear context on greeting: %w", err)
	}

	logger.Debug().Str("session_id", input.SessionID).Msg("greeting detected, context cleared")

	reply := fmt.Sprintf("Good %s! %s. How can I help you with your card today?",
		g.greeter.TimeOfDay(g.now()), g.greeter.WeatherPhrase(ctx))
	return core.Reply(core.NodeGreeting, reply), nil
}

// GetName returns the node name
func (g *GreetingNode) GetName() string {
	return core.NodeGreeting
}

// GetType returns the node type
func (g *GreetingNode) GetType() core.NodeType {
	return core.NodeTypeGreeting
}

// staticGreeter is used when no weather source is wired
type staticGreeter struct{}

func (staticGreeter) TimeOfDay(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func (staticGreeter) WeatherPhrase(context.Context) string {
	return "I hope you're having a nice day"
}
