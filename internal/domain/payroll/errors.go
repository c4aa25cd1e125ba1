package payroll

import "hrms/internal/platform/apperr"

var (
	ErrNotFound          = apperr.NotFound("payroll ledger not found")
	ErrEmployeeNotFound  = apperr.NotFound("employee not found")
	ErrDuplicatePeriod   = apperr.Conflict("employee already has a ledger for this pay period")
	ErrInvalidTransition = apperr.Validation("illegal payroll status transition")
	ErrInvalidPeriod     = apperr.Validation("pay period must be YYYY-MM")
	ErrInvalidDate       = apperr.Validation("date must be YYYY-MM-DD")
	ErrInvalidRange      = apperr.Validation("range start is after range end")
	ErrInvalidStatus     = apperr.Validation("unknown payroll status")
	ErrNotEditable       = apperr.IllegalState("only DRAFT or CALCULATED ledgers can be edited")
	ErrNotDeletable      = apperr.IllegalState("only DRAFT ledgers can be deleted")
	ErrNotApproved       = apperr.IllegalState("payment requires an APPROVED ledger")
	ErrUsePayment        = apperr.Validation("use the payment operation to mark a ledger PAID")
	ErrNoPayslip         = apperr.IllegalState("payslips exist only for APPROVED or PAID ledgers")
	ErrAmountOutOfRange  = apperr.Validation("amount must have at most 2 decimal places and stay below 10^12")
	ErrNegativeComponent = apperr.Calculation("salary components must not be negative")
	ErrNetMissing        = apperr.Calculation("net salary has not been calculated")
	ErrNetNegative       = apperr.Calculation("net salary is negative")
	ErrNetMismatch       = apperr.Calculation("net salary does not match its components")
)
