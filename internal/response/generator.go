package response

import (
	"fmt"
	"strings"
	"time"

	"card_assistant/internal/nlu"
	"card_assistant/pkg"
)

// HelpMenu is the reply for anything the assistant could not classify with confidence
const HelpMenu = "I'm not quite sure what you need. I can help you with:\n" +
	"1. Checking your balance and payment due date\n" +
	"2. Disputing a transaction or reporting a duplicate charge\n" +
	"3. Blocking, replacing or activating your card\n" +
	"4. Your credit limit and available credit\n" +
	"5. Statements, reward points and app or login problems\n" +
	"What would you like to do?"

const generalReply = "I'm here to help with your credit card account. What can I do for you today?"

type builder func(g *Generator, intent pkg.ClassifiedIntent, account *pkg.UserAccountContext) string

// Generator turns a classified intent into reply text
type Generator struct {
	now      func() time.Time
	builders map[pkg.IntentID]builder
}

// Option configures a Generator
type Option func(*Generator)

// WithClock sets the time source used for reference numbers
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator creates a generator with the built-in reply builders
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now: time.Now,
		builders: map[pkg.IntentID]builder{
			pkg.IntentPaymentInquiry:      paymentReply,
			pkg.IntentTransactionDispute:  disputeReply,
			pkg.IntentCardManagement:      cardReply,
			pkg.IntentCreditLimit:         creditReply,
			pkg.IntentAccountSecurity:     securityReply,
			pkg.IntentStatementInquiry:    statementReply,
			pkg.IntentRewardPoints:        rewardReply,
			pkg.IntentTechnicalSupport:    technicalReply,
			pkg.IntentUnrecognizedInquiry: unrecognizedReply,
			pkg.IntentGeneral:             generalReplyBuilder,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate maps the intent to its builder; unknown intents get the general reply
func (g *Generator) Generate(intent pkg.ClassifiedIntent, account *pkg.UserAccountContext) string {
	build, ok := g.builders[intent.IntentID]
	if !ok {
		build = generalReplyBuilder
	}
	return build(g, intent, account)
}

// Reference returns a fresh PREFIX-NNNNN reference from the generator's clock
func (g *Generator) Reference(prefix string) string {
	return ReferenceNumber(prefix, g.now())
}

func paymentReply(_ *Generator, _ pkg.ClassifiedIntent, account *pkg.UserAccountContext) string {
	if account == nil {
		return "I can help with your payment. Your statement shows the amount due and due date, " +
			"and you can pay through the mobile app, online banking or autopay. Would you like to set up a payment?"
	}

	balance := FormatMoney(account.OutstandingBalance)
	minimum := FormatMoney(MinimumPayment(account.OutstandingBalance))

	switch {
	case account.AccountStatus == pkg.AccountOverdue:
		return fmt.Sprintf("Your account is overdue. The outstanding balance of %s was due on %s. "+
			"Please pay at least the minimum of %s as soon as possible to avoid further late fees. "+
			"Would you like to make a payment now?", balance, account.DueDate, minimum)
	case account.OutstandingBalance > 0:
		return fmt.Sprintf("Your current balance is %s, due on %s. The minimum payment is %s. "+
			"Would you like to set up a payment?", balance, account.DueDate, minimum)
	default:
		return "You have no outstanding balance right now. Nothing is due. Would you like to set up autopay for future statements?"
	}
}

func disputeReply(g *Generator, intent pkg.ClassifiedIntent, account *pkg.UserAccountContext) string {
	reference := g.Reference(PrefixDispute)

	if account != nil {
		if first, second, ok := nlu.FindDuplicateTransactions(account.RecentTransactions); ok {
			return fmt.Sprintf("I found two charges of %s at %s (%s and %s) posted within minutes of each other. "+
				"This looks like a duplicate charge. Reference: %s. Would you like me to report it?",
				FormatMoney(first.Amount), first.Description, first.ID, second.ID, reference)
		}
	}

	subject := "this transaction"
	if amount, ok := intent.FirstEntity(pkg.EntityAmount); ok {
		if value, parsed := parseAmount(amount.Value); parsed {
			subject = "the " + FormatMoney(value) + " charge"
		}
	}
	if merchant, ok := intent.FirstEntity(pkg.EntityMerchant); ok {
		subject += " at " + merchant.Value
	}

	return fmt.Sprintf("I've started a dispute for %s. Reference: %s. "+
		"The amount is on hold while we investigate, which usually takes 5 to 10 business days. "+
		"Would you like me to file the report now?", subject, reference)
}

func cardReply(g *Generator, intent pkg.ClassifiedIntent, _ *pkg.UserAccountContext) string {
	action := "manage"
	if entity, ok := intent.FirstEntity(pkg.EntityAction); ok {
		action = entity.Value
	}

	switch action {
	case "block":
		return fmt.Sprintf("Your card has been blocked to prevent further use. Reference: %s. "+
			"A replacement card will arrive in 5 to 7 business days.", g.Reference(PrefixBlock))
	case "replace":
		return "I've ordered a replacement card. It will arrive in 5 to 7 business days and your current card keeps working until you activate the new one."
	case "activate":
		return "To activate your card, open the mobile app and go to Cards > Activate, or call the number on the sticker on your card."
	case "cancel":
		return "I can help you cancel your card. Any remaining balance must still be paid. Please confirm in the app under Cards > Close card."
	default:
		return "I can help you block, replace, activate or cancel your card. Which would you like to do?"
	}
}

func creditReply(g *Generator, intent pkg.ClassifiedIntent, account *pkg.UserAccountContext) string {
	var b strings.Builder
	if account != nil {
		fmt.Fprintf(&b, "Your credit limit is %s and you have %s available. ",
			FormatMoney(account.CreditLimit), FormatMoney(account.AvailableCredit))
	}

	if requested, ok := intent.FirstEntity(pkg.EntityRequestedAmount); ok {
		if value, parsed := parseAmount(requested.Value); parsed {
			fmt.Fprintf(&b, "I can submit a request to raise your limit to %s. Reference: %s. Would you like me to submit it?",
				FormatMoney(value), g.Reference(PrefixCredit))
			return b.String()
		}
	}

	b.WriteString("Would you like to request a credit limit increase?")
	return b.String()
}

func securityReply(g *Generator, _ pkg.ClassifiedIntent, _ *pkg.UserAccountContext) string {
	return fmt.Sprintf("Your account security is our priority. I've placed a temporary security hold and opened a review. "+
		"Reference: %s. Can we send a verification code to the phone number on file?", g.Reference(PrefixSecurity))
}

func statementReply(_ *Generator, intent pkg.ClassifiedIntent, account *pkg.UserAccountContext) string {
	period := "your latest"
	if month, ok := intent.FirstEntity(pkg.EntityMonth); ok {
		period = "your " + month.Value
	}

	reply := fmt.Sprintf("You can download %s statement from the mobile app under Statements.", period)
	if account != nil && len(account.RecentTransactions) > 0 {
		reply += fmt.Sprintf(" You have %d recent transactions on file.", len(account.RecentTransactions))
	}
	return reply
}

func rewardReply(_ *Generator, _ pkg.ClassifiedIntent, account *pkg.UserAccountContext) string {
	if account == nil {
		return "You earn one reward point for every dollar spent. You can check and redeem your points in the mobile app."
	}
	return fmt.Sprintf("You have %s reward points from recent purchases. You earn one point per dollar and can redeem points for statement credit or travel.",
		printer.Sprintf("%d", RewardPoints(account)))
}

// RewardPoints awards one point per whole dollar of purchases
func RewardPoints(account *pkg.UserAccountContext) int64 {
	if account == nil {
		return 0
	}
	var points int64
	for _, tx := range account.RecentTransactions {
		if tx.Type == pkg.TransactionPurchase && tx.Amount > 0 {
			points += int64(tx.Amount)
		}
	}
	return points
}

func technicalReply(_ *Generator, _ pkg.ClassifiedIntent, _ *pkg.UserAccountContext) string {
	return "Sorry about the trouble. Please try these steps: update the mobile app, clear your browser cache, " +
		"and reset your password from the login page if needed. If it still fails, our technical support team can help."
}

func unrecognizedReply(_ *Generator, _ pkg.ClassifiedIntent, _ *pkg.UserAccountContext) string {
	return HelpMenu
}

func generalReplyBuilder(_ *Generator, _ pkg.ClassifiedIntent, _ *pkg.UserAccountContext) string {
	return generalReply
}
