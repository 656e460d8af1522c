package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrSettlementNotFound   = errors.New("settlement not found")
	ErrDuplicateAuction     = errors.New("auction already exists")
	ErrDuplicateParticipant = errors.New("participant already exists")
	ErrVersionConflict      = errors.New("auction version conflict")
)

// Bid rejection errors
var (
	ErrAuctionNotOpen        = errors.New("auction is not open for bidding")
	ErrDepositRequired       = errors.New("deposit payment required before bidding")
	ErrBidTooLow             = errors.New("bid amount too low")
	ErrInvalidIncrement      = errors.New("bid amount is not a multiple of the bid step")
	ErrInvalidAutoBidCeiling = errors.New("auto-bid ceiling below bid amount")
	ErrAlreadyHighestBidder  = errors.New("bidder already holds the highest bid")
)

// Lifecycle and settlement errors
var (
	ErrAlreadyFinalized       = errors.New("auction already finalized")
	ErrDuplicatePayment       = errors.New("deposit already paid")
	ErrPaymentMismatch        = errors.New("confirmed amount does not match deposit amount")
	ErrAlreadyRefunded        = errors.New("deposit already refunded")
	ErrConcurrentModification = errors.New("concurrent modification, retries exhausted")
	ErrInvalidAuction         = errors.New("invalid auction parameters")
	ErrInvalidBid             = errors.New("invalid bid")
	ErrCancelReasonRequired   = errors.New("cancellation requires a reason")
)
