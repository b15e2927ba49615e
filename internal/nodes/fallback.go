package nodes

import (
	"context"
	"fmt"

	"card_assistant/internal/core"
	"card_assistant/internal/response"
	"card_assistant/internal/storage"
)

// FallbackNode answers low-confidence utterances with the help menu
type FallbackNode struct {
	store storage.ContextStore
}

// NewFallbackNode creates a fallback node
func NewFallbackNode(store storage.ContextStore) *FallbackNode {
	return &FallbackNode{store: store}
}

// Execute clears any pending context and returns the help menu
func (f *FallbackNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if err := f.store.Clear(ctx, input.SessionID); err != nil {
		return core.NodeOutput{}, fmt.Errorf("failed to clear context: %w", err)
	}
	return core.Reply(core.NodeFallback, response.HelpMenu), nil
}

// GetName returns the node name
func (f *FallbackNode) GetName() string {
	return core.NodeFallback
}

// GetType returns the node type
func (f *FallbackNode) GetType() core.NodeType {
	return core.NodeTypeFallback
}
