package nodes

import (
	"fmt"
	"time"

	"card_assistant/internal/core"
	"card_assistant/internal/nlu"
	"card_assistant/internal/response"
	"card_assistant/internal/storage"
)

// Dependencies are the collaborators of the dialogue graph. Store and Accounts
// are required; everything else has a default.
type Dependencies struct {
	Store      storage.ContextStore
	Accounts   nlu.AccountProvider
	Greeter    GreetingProvider
	Classifier *nlu.Classifier
	Generator  *response.Generator
	Recorder   core.Recorder
	Threshold  float64
	DemoUserID string
	Now        func() time.Time
}

// BuildProcessor assembles the greeting -> follow_up -> shortcut -> classify -> {response | fallback} graph
func BuildProcessor(deps Dependencies) (*core.DefaultGraphProcessor, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("context store is required")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("account provider is required")
	}
	if deps.Greeter == nil {
		deps.Greeter = staticGreeter{}
	}
	if deps.Classifier == nil {
		deps.Classifier = nlu.NewClassifier()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Generator == nil {
		deps.Generator = response.NewGenerator(response.WithClock(deps.Now))
	}
	if deps.Threshold == 0 {
		deps.Threshold = DefaultConfidenceThreshold
	}

	tools, err := GetTools(deps.Accounts)
	if err != nil {
		return nil, err
	}

	opts := []core.ProcessorOption{core.WithContextReader(deps.Store)}
	if deps.Recorder != nil {
		opts = append(opts, core.WithRecorder(deps.Recorder))
	}
	processor := core.NewGraphProcessor(core.Config{Flow: core.DefaultDialogueFlow()}, opts...)

	for _, node := range []core.Node{
		NewGreetingNode(deps.Store, deps.Greeter, deps.Now),
		NewFollowUpNode(deps.Store),
		NewShortcutNode(tools, deps.DemoUserID, deps.Now),
		NewClassifyNode(deps.Classifier, deps.Accounts, deps.Threshold),
		NewResponseNode(deps.Generator, deps.Store),
		NewFallbackNode(deps.Store),
	} {
		if err := processor.AddNode(node); err != nil {
			return nil, err
		}
	}
	return processor, nil
}
