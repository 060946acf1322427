package checkout

import (
	"fmt"
)

// ValidationError indicates malformed or missing client input. Its message is
// safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalidf returns a *ValidationError with a formatted message.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Validation messages shared with callers and tests.
const (
	MsgCartEmpty          = "cart is empty"
	MsgInvalidCartItem    = "invalid cart item"
	MsgInvalidInstallment = "invalid installment option"
	MsgBillingRequired    = "billing address is required"
)
