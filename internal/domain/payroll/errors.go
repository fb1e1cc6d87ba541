package payroll

import "errors"

var (
	ErrRunNotFound       = errors.New("payroll run not found")
	ErrInvalidTransition = errors.New("invalid payroll run status transition")
	ErrRunAlreadyFinal   = errors.New("payroll run is in a terminal state")
	ErrRunNotApproved    = errors.New("payroll run is not approved for submission")
)
