package payroll

import "strings"

type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusCalculated Status = "CALCULATED"
	StatusApproved   Status = "APPROVED"
	StatusPaid       Status = "PAID"
	StatusCancelled  Status = "CANCELLED"
)

var Statuses = []Status{StatusDraft, StatusCalculated, StatusApproved, StatusPaid, StatusCancelled}

func ParseStatus(value string) (Status, bool) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(value)))
	for _, s := range Statuses {
		if s == candidate {
			return s, true
		}
	}
	return "", false
}

const (
	PeriodLayout = "2006-01"
	DateLayout   = "2006-01-02"

	NotificationPaid = "PAYROLL_PAID"
)
