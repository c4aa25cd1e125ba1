package reports

import (
	"encoding/json"
	"time"
)

type JobRun struct {
	ID          int64           `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type JobRunFilter struct {
	JobType     string
	Statuses    []string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// Dashboard is the HR overview: headcount and the current payroll period.
type Dashboard struct {
	Period            string         `json:"period"`
	Departments       int            `json:"departments"`
	Positions         int            `json:"positions"`
	EmployeesByStatus map[string]int `json:"employeesByStatus"`
	LedgersByStatus   map[string]int `json:"ledgersByStatus"`
}
