package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPrice is returned when a subscription's period price is not positive.
	ErrInvalidPrice = errors.New("period price must be positive")
	// ErrUnknownPlan is returned for plans other than monthly and yearly.
	ErrUnknownPlan = errors.New("unknown subscription plan")
	// ErrZeroAmount is returned for ledger entries, expenses or salaries with a zero amount.
	ErrZeroAmount = errors.New("amount must not be zero")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
	// ErrNotFound is returned when a player, coach or entry does not exist in the academy.
	ErrNotFound = errors.New("not found")
)

func unknownPlan(plan string) error {
	return fmt.Errorf("%w: %q (want monthly or yearly)", ErrUnknownPlan, plan)
}
