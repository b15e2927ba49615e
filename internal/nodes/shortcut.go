package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"card_assistant/internal/core"
	"card_assistant/internal/logger"
	"card_assistant/internal/response"

	"github.com/cloudwego/eino/components/tool"
)

// Fixed replies of the legacy shortcuts
const (
	ShortcutYesReply = "I can help you with your payment. You can check your balance, see your due date " +
		"or make a payment in the mobile app under Payments."
	ShortcutUnavailableReply = "I couldn't look that up right now. Please try again in a moment."
)

type shortcutKind int

const (
	shortcutBalance shortcutKind = iota
	shortcutCredit
	shortcutDuplicate
	shortcutYes
	shortcutNo
	shortcutReportDuplicate
)

type shortcut struct {
	kind    shortcutKind
	phrases []string
	exact   bool
}

// shortcuts is checked in order; the first phrase hit wins
var shortcuts = []shortcut{
	{kind: shortcutBalance, phrases: []string{"get payment amount", "check balance", "payment"}},
	{kind: shortcutCredit, phrases: []string{"get updated credit balance"}},
	{kind: shortcutDuplicate, phrases: []string{"check for duplicate", "duplicate transaction"}},
	{kind: shortcutYes, phrases: []string{"yes"}, exact: true},
	{kind: shortcutNo, phrases: []string{"no"}, exact: true},
	{kind: shortcutReportDuplicate, phrases: []string{"report duplicate", "report this", "duplicate charge"}},
}

func (s shortcut) matches(text string) bool {
	for _, phrase := range s.phrases {
		if s.exact && text == phrase {
			return true
		}
		if !s.exact && strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// ShortcutNode keeps the canned lookups that predate context tracking.
// Lookups run against the demo account through the eino lookup tools.
type ShortcutNode struct {
	tools      map[string]tool.InvokableTool
	demoUserID string
	now        func() time.Time
}

// NewShortcutNode creates a shortcut node
func NewShortcutNode(tools map[string]tool.InvokableTool, demoUserID string, now func() time.Time) *ShortcutNode {
	return &ShortcutNode{tools: tools, demoUserID: demoUserID, now: now}
}

// Execute answers when the utterance hits a legacy shortcut phrase
func (s *ShortcutNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	text := strings.ToLower(strings.TrimSpace(input.UserMessage))
	if text == "" {
		return core.Pass(), nil
	}

	for _, sc := range shortcuts {
		if !sc.matches(text) {
			continue
		}
		logger.Debug().Str("session_id", input.SessionID).Int("shortcut", int(sc.kind)).Msg("shortcut phrase matched")
		return s.answer(ctx, sc.kind), nil
	}
	return core.Pass(), nil
}

func (s *ShortcutNode) answer(ctx context.Context, kind shortcutKind) core.NodeOutput {
	switch kind {
	case shortcutYes:
		return core.Reply(core.NodeShortcut, ShortcutYesReply)
	case shortcutNo:
		return core.Reply(core.NodeShortcut, response.HelpMenu)
	case shortcutReportDuplicate:
		return core.Reply(core.NodeShortcut, fmt.Sprintf(
			"Your duplicate charge report has been filed. Case number: %s. We'll update you within 3 business days.",
			response.ReferenceNumber(response.PrefixCase, s.now())))
	}

	name, reply, err := s.lookup(ctx, kind)
	if err != nil {
		output := core.Reply(core.NodeShortcut, ShortcutUnavailableReply)
		output.Error = fmt.Errorf("%s: %w", name, err)
		return output
	}
	output := core.Reply(core.NodeShortcut, reply)
	output.Data[core.KeyToolsExecuted] = []string{name}
	return output
}

func (s *ShortcutNode) lookup(ctx context.Context, kind shortcutKind) (string, string, error) {
	args := AccountLookup{UserID: s.demoUserID}

	switch kind {
	case shortcutBalance:
		var result BalanceResult
		if err := s.invoke(ctx, ToolBalanceLookup, args, &result); err != nil {
			return ToolBalanceLookup, "", err
		}
		return ToolBalanceLookup, fmt.Sprintf("Your payment amount is %s with a minimum payment of %s, due on %s.",
			response.FormatMoney(result.OutstandingBalance), response.FormatMoney(result.MinimumPayment), result.DueDate), nil

	case shortcutCredit:
		var result CreditResult
		if err := s.invoke(ctx, ToolCreditLookup, args, &result); err != nil {
			return ToolCreditLookup, "", err
		}
		return ToolCreditLookup, fmt.Sprintf("Your updated available credit is %s of your %s limit (%s used).",
			response.FormatMoney(result.AvailableCredit), response.FormatMoney(result.CreditLimit), response.FormatMoney(result.UsedCredit)), nil

	default:
		var result DuplicateResult
		if err := s.invoke(ctx, ToolDuplicateCheck, args, &result); err != nil {
			return ToolDuplicateCheck, "", err
		}
		if !result.Found {
			return ToolDuplicateCheck, "I checked your recent transactions and found no duplicate charges.", nil
		}
		return ToolDuplicateCheck, fmt.Sprintf("I found a duplicate transaction: %s and %s, both %s at %s. Say \"report duplicate\" to file a case.",
			result.FirstID, result.SecondID, response.FormatMoney(result.Amount), result.Description), nil
	}
}

func (s *ShortcutNode) invoke(ctx context.Context, name string, args any, out any) error {
	t, ok := s.tools[name]
	if !ok {
		return fmt.Errorf("tool %s is not registered", name)
	}
	return invokeTool(ctx, t, args, out)
}

// GetName returns the node name
func (s *ShortcutNode) GetName() string {
	return core.NodeShortcut
}

// GetType returns the node type
func (s *ShortcutNode) GetType() core.NodeType {
	return core.NodeTypeShortcut
}
