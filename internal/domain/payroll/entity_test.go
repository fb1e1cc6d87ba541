package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRunStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    RunStatus
		to      RunStatus
		allowed bool
	}{
		{RunStatusDraft, RunStatusPending, true},
		{RunStatusPending, RunStatusApproved, true},
		{RunStatusApproved, RunStatusProcessed, true},
		{RunStatusDraft, RunStatusCancelled, true},
		{RunStatusPending, RunStatusCancelled, true},
		{RunStatusApproved, RunStatusCancelled, true},

		{RunStatusDraft, RunStatusApproved, false},
		{RunStatusDraft, RunStatusProcessed, false},
		{RunStatusPending, RunStatusProcessed, false},
		{RunStatusApproved, RunStatusPending, false},
		{RunStatusProcessed, RunStatusCancelled, false},
		{RunStatusProcessed, RunStatusPending, false},
		{RunStatusCancelled, RunStatusPending, false},
		{RunStatusCancelled, RunStatusProcessed, false},
	}
	for _, c := range cases {
		got := c.from.CanTransitionTo(c.to)
		assert.Equal(t, c.allowed, got, "%s -> %s", c.from, c.to)
	}
}

func TestRunStatus_IsTerminal(t *testing.T) {
	assert.True(t, RunStatusProcessed.IsTerminal())
	assert.True(t, RunStatusCancelled.IsTerminal())
	assert.False(t, RunStatusDraft.IsTerminal())
	assert.False(t, RunStatusPending.IsTerminal())
	assert.False(t, RunStatusApproved.IsTerminal())
}

func TestPayrollRun_GrossPay(t *testing.T) {
	run := PayrollRun{
		BasicPay:    decimal.RequireFromString("700"),
		OvertimePay: decimal.RequireFromString("150"),
	}
	assert.True(t, decimal.RequireFromString("850").Equal(run.GrossPay()))
}
