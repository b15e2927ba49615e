package core

import (
	"context"
	"errors"
	"testing"

	"card_assistant/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	name  string
	calls int
	run   func(input NodeInput) (NodeOutput, error)
}

func (f *fakeNode) Execute(_ context.Context, input NodeInput) (NodeOutput, error) {
	f.calls++
	return f.run(input)
}

func (f *fakeNode) GetName() string { return f.name }
func (f *fakeNode) GetType() NodeType { return NodeType(f.name) }

func passNode(name string) *fakeNode {
	return &fakeNode{name: name, run: func(NodeInput) (NodeOutput, error) { return Pass(), nil }}
}

func replyNode(name, text string) *fakeNode {
	return &fakeNode{name: name, run: func(NodeInput) (NodeOutput, error) { return Reply(name, text), nil }}
}

type fakeReader struct {
	context *pkg.ConversationContext
	err     error
}

func (f fakeReader) Get(context.Context, string) (*pkg.ConversationContext, error) {
	return f.context, f.err
}

type fakeRecorder struct {
	branches []string
	intents  []pkg.IntentID
}

func (f *fakeRecorder) ObserveUtterance(branch string) { f.branches = append(f.branches, branch) }
func (f *fakeRecorder) ObserveIntent(intent pkg.ClassifiedIntent) {
	f.intents = append(f.intents, intent.IntentID)
}

func classifyNode(confident bool) *fakeNode {
	return &fakeNode{name: NodeClassify, run: func(NodeInput) (NodeOutput, error) {
		return NodeOutput{Data: map[string]any{
			KeyConfident: confident,
			KeyIntent:    &pkg.ClassifiedIntent{IntentID: pkg.IntentPaymentInquiry, Confidence: 0.92},
		}}, nil
	}}
}

func newDialogueProcessor(t *testing.T, nodes ...Node) *DefaultGraphProcessor {
	t.Helper()
	processor := NewGraphProcessor(Config{Flow: DefaultDialogueFlow()})
	for _, node := range nodes {
		require.NoError(t, processor.AddNode(node))
	}
	return processor
}

func TestProcessorStopsAtFirstAnsweringNode(t *testing.T) {
	greeting := replyNode(NodeGreeting, "Good morning!")
	shortcut := passNode(NodeShortcut)
	processor := newDialogueProcessor(t, greeting, passNode(NodeFollowUp), shortcut)

	output, err := processor.Execute(context.Background(), pkg.ProcessorInput{SessionID: "s1", UserMessage: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "Good morning!", output.Response)
	assert.Equal(t, NodeGreeting, output.Branch)
	assert.Equal(t, []string{NodeGreeting}, output.Metadata["execution_path"])
	assert.Zero(t, shortcut.calls)
}

func TestProcessorRoutesOnConfidence(t *testing.T) {
	for _, tt := range []struct {
		confident bool
		branch    string
	}{
		{true, NodeResponse},
		{false, NodeFallback},
	} {
		t.Run(tt.branch, func(t *testing.T) {
			var seen *pkg.ClassifiedIntent
			response := &fakeNode{name: NodeResponse, run: func(input NodeInput) (NodeOutput, error) {
				seen = input.Intent
				return Reply(NodeResponse, "answer"), nil
			}}
			recorder := &fakeRecorder{}
			processor := newDialogueProcessor(t,
				passNode(NodeGreeting), passNode(NodeFollowUp), passNode(NodeShortcut),
				classifyNode(tt.confident), response, replyNode(NodeFallback, "menu"))
			WithRecorder(recorder)(processor)

			output, err := processor.Execute(context.Background(), pkg.ProcessorInput{SessionID: "s1", UserMessage: "balance"})
			require.NoError(t, err)

			assert.Equal(t, tt.branch, output.Branch)
			assert.Equal(t, []string{NodeGreeting, NodeFollowUp, NodeShortcut, NodeClassify, tt.branch}, output.Metadata["execution_path"])
			require.NotNil(t, output.Intent)
			assert.Equal(t, pkg.IntentPaymentInquiry, output.Intent.IntentID)
			assert.Equal(t, []string{tt.branch}, recorder.branches)
			assert.Equal(t, []pkg.IntentID{pkg.IntentPaymentInquiry}, recorder.intents)
			if tt.confident {
				assert.Same(t, output.Intent, seen)
			}
		})
	}
}

func TestProcessorReportsUpdatedContext(t *testing.T) {
	pending := &pkg.ConversationContext{LastAction: pkg.ActionPaymentConfirmation}
	processor := NewGraphProcessor(Config{Flow: GraphFlow{StartNode: NodeResponse}}, WithContextReader(fakeReader{context: pending}))
	require.NoError(t, processor.AddNode(replyNode(NodeResponse, "ok")))

	output, err := processor.Execute(context.Background(), pkg.ProcessorInput{SessionID: "s1"})
	require.NoError(t, err)
	assert.Same(t, pending, output.UpdatedContext)

	failing := NewGraphProcessor(Config{Flow: GraphFlow{StartNode: NodeResponse}}, WithContextReader(fakeReader{err: errors.New("down")}))
	require.NoError(t, failing.AddNode(replyNode(NodeResponse, "ok")))
	_, err = failing.Execute(context.Background(), pkg.ProcessorInput{SessionID: "s1"})
	assert.Error(t, err)
}

func TestProcessorErrors(t *testing.T) {
	ctx := context.Background()

	missing := newDialogueProcessor(t, passNode(NodeGreeting))
	_, err := missing.Execute(ctx, pkg.ProcessorInput{})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	failing := newDialogueProcessor(t, &fakeNode{name: NodeGreeting, run: func(NodeInput) (NodeOutput, error) {
		return NodeOutput{}, errors.New("boom")
	}})
	_, err = failing.Execute(ctx, pkg.ProcessorInput{})
	assert.ErrorContains(t, err, "boom")

	loop := NewGraphProcessor(Config{
		Flow:     GraphFlow{StartNode: "a", Edges: map[string][]GraphEdge{"a": {{To: "a"}}}},
		MaxSteps: 3,
	})
	require.NoError(t, loop.AddNode(passNode("a")))
	_, err = loop.Execute(ctx, pkg.ProcessorInput{})
	assert.ErrorIs(t, err, ErrInvalidFlow)

	assert.ErrorIs(t, loop.SetFlow(GraphFlow{}), ErrInvalidFlow)
	_, err = NewGraphProcessor(Config{}).Execute(ctx, pkg.ProcessorInput{})
	assert.ErrorIs(t, err, ErrInvalidFlow)

	_, err = loop.GetNode("nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Error(t, loop.AddNode(nil))
}

func TestProcessorCollectsNonFatalErrors(t *testing.T) {
	processor := NewGraphProcessor(Config{Flow: GraphFlow{StartNode: "a", Edges: map[string][]GraphEdge{"a": {{To: "b"}}}}})
	require.NoError(t, processor.AddNode(&fakeNode{name: "a", run: func(NodeInput) (NodeOutput, error) {
		return NodeOutput{Data: map[string]any{"lookup": "skipped", KeyToolsExecuted: []string{"balance_lookup"}}, Error: errors.New("account service down")}, nil
	}}))
	require.NoError(t, processor.AddNode(replyNode("b", "done")))

	output, err := processor.Execute(context.Background(), pkg.ProcessorInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"account service down"}, output.Metadata["errors"])
	assert.Equal(t, "skipped", output.Metadata["a_lookup"])
	assert.Equal(t, []string{"balance_lookup"}, output.Metadata[KeyToolsExecuted])
}

func TestSortEdgesByPriorityIsStable(t *testing.T) {
	edges := []GraphEdge{{To: "c", Priority: 2}, {To: "a", Priority: 1}, {To: "b", Priority: 1}}
	sorted := sortEdgesByPriority(edges)
	assert.Equal(t, []string{"a", "b", "c"}, []string{sorted[0].To, sorted[1].To, sorted[2].To})
	assert.Equal(t, "c", edges[0].To)
}
