package services

import "github.com/yourusername/billing-backoffice/models"

// allowedTransitions is the legal state graph. It is intentionally an
// explicit adjacency table and not an ordinal comparison: SENT and OVERDUE
// both reach PAID, but OVERDUE cannot go back to SENT, and nothing leaves
// PAID.
var allowedTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.StatusDraft:   {models.StatusSent, models.StatusPaid},
	models.StatusSent:    {models.StatusPaid, models.StatusOverdue},
	models.StatusOverdue: {models.StatusPaid},
	models.StatusPaid:    {},
}

// AllowedNextStates returns the statuses reachable from current.
func AllowedNextStates(current models.InvoiceStatus) []models.InvoiceStatus {
	return allowedTransitions[current]
}

// CanTransition reports whether an invoice in current may move to next.
// Same-state requests are always rejected, not treated as a no-op.
func CanTransition(current, next models.InvoiceStatus) bool {
	if current == next {
		return false
	}
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}
