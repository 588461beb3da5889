package services

import (
	"errors"
	"fmt"
)

// User-facing, terminal-for-this-request outcomes. None of them mutate state.
var (
	// ErrUnknownTicket indicates the ticket code was never registered
	ErrUnknownTicket = errors.New("invalid ticket code")

	// ErrAlreadyRedeemed indicates the ticket has already been used
	ErrAlreadyRedeemed = errors.New("ticket has already been used")

	// ErrPromotionEnded indicates every spin has been consumed
	ErrPromotionEnded = errors.New("promotion has ended")

	// ErrInvalidTicketCode indicates a malformed code during registration
	ErrInvalidTicketCode = errors.New("invalid ticket code format")

	// ErrRetriesExhausted indicates repeated transaction conflicts; an
	// internal fault, the caller may try again later
	ErrRetriesExhausted = errors.New("redemption failed after repeated transaction conflicts")

	// ErrStoreUnavailable indicates the store is rejecting requests
	ErrStoreUnavailable = errors.New("promotion store unavailable")
)

// DuplicateTicketsError reports which codes of a registration batch already
// exist.
type DuplicateTicketsError struct {
	Codes []string
}

func (e *DuplicateTicketsError) Error() string {
	return fmt.Sprintf("duplicate tickets found: %v", e.Codes)
}
