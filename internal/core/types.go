package core

import (
	"context"
	"errors"

	"card_assistant/pkg"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrInvalidFlow  = errors.New("invalid graph flow")
)

// Node represents a single processing unit in the graph flow
type Node interface {
	Execute(ctx context.Context, input NodeInput) (NodeOutput, error)
	GetName() string
	GetType() NodeType
}

// NodeType defines the different types of nodes in the graph
type NodeType string

const (
	NodeTypeGreeting NodeType = "greeting"
	NodeTypeFollowUp NodeType = "follow_up"
	NodeTypeShortcut NodeType = "shortcut"
	NodeTypeClassify NodeType = "classify"
	NodeTypeResponse NodeType = "response"
	NodeTypeFallback NodeType = "fallback"
)

// Node names used by the default dialogue flow
const (
	NodeGreeting = "greeting"
	NodeFollowUp = "follow_up"
	NodeShortcut = "shortcut"
	NodeClassify = "classify"
	NodeResponse = "response"
	NodeFallback = "fallback"
	NodeComplete = "complete"
)

// Well-known keys in NodeOutput.Data
const (
	KeyResponse      = "response"
	KeyBranch        = "branch"
	KeyIntent        = "intent"
	KeyAccount       = "account"
	KeyConfident     = "confident"
	KeyToolsExecuted = "tools_executed"
)

// NodeInput contains the input data for a node
type NodeInput struct {
	SessionID   string                  `json:"session_id"`
	UserID      string                  `json:"user_id,omitempty"`
	UserMessage string                  `json:"user_message"`
	Intent      *pkg.ClassifiedIntent   `json:"intent,omitempty"`
	Account     *pkg.UserAccountContext `json:"account,omitempty"`
	Metadata    map[string]any          `json:"metadata"`
}

// NodeOutput contains the output data from a node
type NodeOutput struct {
	Data     map[string]any `json:"data"`
	NextNode string         `json:"next_node,omitempty"`
	Error    error          `json:"error,omitempty"`
	Complete bool           `json:"complete"`
}

// Reply is the output of a node that answered the utterance and ends the run
func Reply(branch, response string) NodeOutput {
	return NodeOutput{
		Data: map[string]any{
			KeyBranch:   branch,
			KeyResponse: response,
		},
		Complete: true,
	}
}

// Pass hands the utterance on to the next node in the flow
func Pass() NodeOutput {
	return NodeOutput{Data: map[string]any{}}
}

// GraphProcessor orchestrates the execution of nodes in a graph flow
type GraphProcessor interface {
	Execute(ctx context.Context, input pkg.ProcessorInput) (*pkg.ProcessorOutput, error)
	AddNode(node Node) error
	GetNode(name string) (Node, error)
	SetFlow(flow GraphFlow) error
}

// ContextReader exposes the pending context after a run
type ContextReader interface {
	Get(ctx context.Context, sessionID string) (*pkg.ConversationContext, error)
}

// Recorder receives per-utterance outcomes, e.g. for metrics
type Recorder interface {
	ObserveUtterance(branch string)
	ObserveIntent(intent pkg.ClassifiedIntent)
}

// GraphFlow defines the execution flow between nodes
type GraphFlow struct {
	StartNode string                 `json:"start_node"`
	Edges     map[string][]GraphEdge `json:"edges"` // node_name -> possible next nodes
}

// GraphEdge represents a connection between two nodes with conditions
type GraphEdge struct {
	To        string         `json:"to"`
	Condition map[string]any `json:"condition,omitempty"`
	Priority  int            `json:"priority"`
}

// Config holds configuration for the graph processor
type Config struct {
	Flow     GraphFlow `json:"flow"`
	MaxSteps int       `json:"max_steps"`
}

// DefaultDialogueFlow is the fixed precedence chain
// greeting -> follow_up -> shortcut -> classify -> {response | fallback}.
// The first node that answers completes the run.
func DefaultDialogueFlow() GraphFlow {
	return GraphFlow{
		StartNode: NodeGreeting,
		Edges: map[string][]GraphEdge{
			NodeGreeting: {{To: NodeFollowUp}},
			NodeFollowUp: {{To: NodeShortcut}},
			NodeShortcut: {{To: NodeClassify}},
			NodeClassify: {
				{To: NodeResponse, Condition: map[string]any{KeyConfident: true}, Priority: 1},
				{To: NodeFallback, Priority: 2},
			},
		},
	}
}
