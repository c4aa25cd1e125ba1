package payroll

import (
	"strings"
	"time"
)

// ParsePeriod validates a YYYY-MM pay period and returns its first day.
func ParsePeriod(value string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidPeriod
	}
	return t, nil
}

func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}
