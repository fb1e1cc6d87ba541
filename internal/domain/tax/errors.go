package tax

import "errors"

var (
	ErrConfigNotFound = errors.New("tax configuration not found for jurisdiction and tax year")
)
