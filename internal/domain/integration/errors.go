package integration

import "errors"

var (
	ErrUnsupportedProvider = errors.New("unsupported payroll provider")
	ErrConnection          = errors.New("cannot reach payroll provider")
	ErrProvider            = errors.New("payroll provider rejected the request")
	ErrRetryExhausted      = errors.New("retry limit reached for integration attempt")
	ErrAttemptNotFound     = errors.New("integration attempt not found")
	ErrSettingsNotFound    = errors.New("provider settings not found for organization")
	ErrUnauthorizedWebhook = errors.New("webhook signature verification failed")
)
