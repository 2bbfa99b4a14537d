// Package notify builds user notifications and hands them to a Sender
// through the worker pool.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type Kind string

const (
	KindBudgetWarning      Kind = "budget_warning"
	KindBudgetExceeded     Kind = "budget_exceeded"
	KindRecurringProcessed Kind = "recurring_processed"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	UserID    uuid.UUID `json:"user_id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Sender delivers a notification. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

func (n Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func FromJSON(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func newNotification(kind Kind, user core.User, subject, message string) Notification {
	return Notification{
		ID:        uuid.New(),
		Kind:      kind,
		UserID:    user.ID,
		Recipient: user.Email,
		Subject:   subject,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

const humanDate = "January 02, 2006"

// RecurringProcessed confirms that a recurring rule produced tx.
func RecurringProcessed(user core.User, tx core.Transaction, categoryName, walletName string, nextRun time.Time) Notification {
	kind := strings.ToUpper(string(tx.Kind))

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", user.Name)
	fmt.Fprintf(&b, "Your recurring %s transaction has been processed successfully.\n\n", kind)
	b.WriteString("Transaction Details:\n\n")
	fmt.Fprintf(&b, "Amount: %s\n", tx.Amount)
	fmt.Fprintf(&b, "Category: %s\n", categoryName)
	fmt.Fprintf(&b, "Wallet: %s\n", walletName)
	fmt.Fprintf(&b, "Transaction Date: %s\n", tx.OccurredAt.Format(humanDate))
	fmt.Fprintf(&b, "Next Scheduled Transaction: %s\n\n", nextRun.Format(humanDate))
	b.WriteString("This is an automated message. Please do not reply to this email.\n")

	return newNotification(KindRecurringProcessed, user,
		fmt.Sprintf("Recurring %s Transaction Processed", kind), b.String())
}

// BudgetAlert reports a budget that reached the warning or critical level.
// It returns false when usage is below both thresholds.
func BudgetAlert(user core.User, categoryName string, budget core.Budget, usage core.BudgetUsage) (Notification, bool) {
	var (
		kind Kind
		b    strings.Builder
	)
	fmt.Fprintf(&b, "Dear %s,\n\n", user.Name)

	switch usage.Level {
	case core.AlertCritical:
		kind = KindBudgetExceeded
		fmt.Fprintf(&b, "Your budget for the %s category has been completely consumed or exceeded.\n\n", categoryName)
		fmt.Fprintf(&b, "Total Budget: %s\n", budget.Amount)
		fmt.Fprintf(&b, "Amount Used: %s\n\n", usage.Spent)
		b.WriteString("You have exceeded your budget limit. Please review your spending.\n")
	case core.AlertWarning:
		kind = KindBudgetWarning
		fmt.Fprintf(&b, "You've used %s out of your %s budget for the %s category.\n\n", usage.Spent, budget.Amount, categoryName)
		fmt.Fprintf(&b, "Total Budget: %s\n", budget.Amount)
		fmt.Fprintf(&b, "Amount Used: %s\n", usage.Spent)
		fmt.Fprintf(&b, "Remaining Budget: %s\n\n", usage.Remaining)
		fmt.Fprintf(&b, "You've used %s%% of your budget. Be mindful of your spending to avoid exceeding your limit.\n",
			usage.Percentage.StringFixed(2))
	default:
		return Notification{}, false
	}

	return newNotification(kind, user, fmt.Sprintf("Budget Alert: %s", categoryName), b.String()), true
}
