package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"card_assistant/internal/logger"
	"card_assistant/pkg"
)

const defaultMaxSteps = 16

// DefaultGraphProcessor implements the GraphProcessor interface
type DefaultGraphProcessor struct {
	nodes    map[string]Node
	flow     GraphFlow
	maxSteps int
	contexts ContextReader
	recorder Recorder
}

// ProcessorOption configures a DefaultGraphProcessor
type ProcessorOption func(*DefaultGraphProcessor)

// WithContextReader reports the session's pending context in each output
func WithContextReader(reader ContextReader) ProcessorOption {
	return func(g *DefaultGraphProcessor) {
		g.contexts = reader
	}
}

// WithRecorder forwards branch and intent outcomes to r
func WithRecorder(r Recorder) ProcessorOption {
	return func(g *DefaultGraphProcessor) {
		g.recorder = r
	}
}

// NewGraphProcessor creates a new graph processor
func NewGraphProcessor(config Config, opts ...ProcessorOption) *DefaultGraphProcessor {
	processor := &DefaultGraphProcessor{
		nodes:    make(map[string]Node),
		flow:     config.Flow,
		maxSteps: config.MaxSteps,
	}
	if processor.maxSteps <= 0 {
		processor.maxSteps = defaultMaxSteps
	}
	for _, opt := range opts {
		opt(processor)
	}
	return processor
}

// Execute runs the graph flow for one utterance
func (g *DefaultGraphProcessor) Execute(ctx context.Context, input pkg.ProcessorInput) (*pkg.ProcessorOutput, error) {
	startTime := time.Now()

	if g.flow.StartNode == "" {
		return nil, fmt.Errorf("%w: start node cannot be empty", ErrInvalidFlow)
	}

	log := logger.Logger.With().Str("session_id", input.SessionID).Logger()
	log.Debug().Str("user_id", input.UserID).Msg("starting graph execution")

	nodeInput := NodeInput{
		SessionID:   input.SessionID,
		UserID:      input.UserID,
		UserMessage: input.UserMessage,
		Metadata:    make(map[string]any),
	}

	output := &pkg.ProcessorOutput{
		Metadata: make(map[string]any),
	}

	var executionPath []string
	currentNode := g.flow.StartNode

	for currentNode != "" && currentNode != NodeComplete {
		if len(executionPath) >= g.maxSteps {
			return nil, fmt.Errorf("%w: exceeded %d steps, path %v", ErrInvalidFlow, g.maxSteps, executionPath)
		}
		executionPath = append(executionPath, currentNode)

		node, exists := g.nodes[currentNode]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, currentNode)
		}

		nodeOutput, err := node.Execute(ctx, nodeInput)
		if err != nil {
			log.Error().Err(err).Str("node", currentNode).Msg("node execution failed")
			return nil, fmt.Errorf("error executing node %s: %w", currentNode, err)
		}

		// non-fatal
		if nodeOutput.Error != nil {
			log.Warn().Err(nodeOutput.Error).Str("node", currentNode).Msg("node reported error")
			output.Metadata["errors"] = append(getStringSlice(output.Metadata, "errors"), nodeOutput.Error.Error())
		}

		g.processNodeOutput(currentNode, nodeOutput, output, &nodeInput)

		if nodeOutput.Complete {
			break
		}

		nextNode := nodeOutput.NextNode
		if nextNode == "" {
			nextNode = g.getNextNode(currentNode, nodeOutput)
		}
		currentNode = nextNode
	}

	if g.contexts != nil {
		updated, err := g.contexts.Get(ctx, input.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to read conversation context: %w", err)
		}
		output.UpdatedContext = updated
	}

	if g.recorder != nil {
		g.recorder.ObserveUtterance(output.Branch)
		if output.Intent != nil {
			g.recorder.ObserveIntent(*output.Intent)
		}
	}

	processingTime := time.Since(startTime)
	output.ProcessingTime = processingTime.Milliseconds()
	output.Metadata["execution_path"] = executionPath

	log.Info().
		Str("branch", output.Branch).
		Strs("path", executionPath).
		Dur("elapsed", processingTime).
		Msg("utterance processed")

	return output, nil
}

// AddNode adds a node to the processor
func (g *DefaultGraphProcessor) AddNode(node Node) error {
	if node == nil {
		return fmt.Errorf("node cannot be nil")
	}

	nodeName := node.GetName()
	if nodeName == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	g.nodes[nodeName] = node
	logger.Debug().Str("node", nodeName).Str("type", string(node.GetType())).Msg("node added")
	return nil
}

// GetNode retrieves a node by name
func (g *DefaultGraphProcessor) GetNode(name string) (Node, error) {
	node, exists := g.nodes[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return node, nil
}

// SetFlow sets the execution flow
func (g *DefaultGraphProcessor) SetFlow(flow GraphFlow) error {
	if flow.StartNode == "" {
		return fmt.Errorf("%w: start node cannot be empty", ErrInvalidFlow)
	}
	g.flow = flow
	return nil
}

// processNodeOutput merges a node's data into the run output and the next node's input
func (g *DefaultGraphProcessor) processNodeOutput(nodeName string, nodeOutput NodeOutput, globalOutput *pkg.ProcessorOutput, nodeInput *NodeInput) {
	for key, value := range nodeOutput.Data {
		switch key {
		case KeyResponse:
			if response, ok := value.(string); ok {
				globalOutput.Response = response
			}
		case KeyBranch:
			if branch, ok := value.(string); ok {
				globalOutput.Branch = branch
			}
		case KeyIntent:
			if intent, ok := value.(*pkg.ClassifiedIntent); ok {
				globalOutput.Intent = intent
				nodeInput.Intent = intent
			}
		case KeyAccount:
			if account, ok := value.(*pkg.UserAccountContext); ok {
				nodeInput.Account = account
			}
		case KeyToolsExecuted:
			if tools, ok := value.([]string); ok {
				globalOutput.Metadata[KeyToolsExecuted] = append(getStringSlice(globalOutput.Metadata, KeyToolsExecuted), tools...)
			}
		default:
			globalOutput.Metadata[fmt.Sprintf("%s_%s", nodeName, key)] = value
			nodeInput.Metadata[key] = value
		}
	}
}

// getNextNode picks the first edge, by priority, whose condition holds
func (g *DefaultGraphProcessor) getNextNode(currentNode string, nodeOutput NodeOutput) string {
	edges, exists := g.flow.Edges[currentNode]
	if !exists || len(edges) == 0 {
		return NodeComplete
	}

	for _, edge := range sortEdgesByPriority(edges) {
		if evaluateCondition(edge.Condition, nodeOutput) {
			return edge.To
		}
	}

	// no condition matched
	return edges[0].To
}

// sortEdgesByPriority sorts edges by priority (lower number = higher priority)
func sortEdgesByPriority(edges []GraphEdge) []GraphEdge {
	sorted := make([]GraphEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

// evaluateCondition requires every condition key to be present in the output with an equal value
func evaluateCondition(condition map[string]any, nodeOutput NodeOutput) bool {
	for key, expectedValue := range condition {
		actualValue, exists := nodeOutput.Data[key]
		if !exists || actualValue != expectedValue {
			return false
		}
	}
	return true
}

func getStringSlice(metadata map[string]any, key string) []string {
	if value, exists := metadata[key]; exists {
		if slice, ok := value.([]string); ok {
			return slice
		}
	}
	return []string{}
}
