package notifications

const (
	TypePayrollPaid = "PAYROLL_PAID"
	TypeSystem      = "SYSTEM"
)
