package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrParticipantNotFound):
		return http.StatusNotFound, "participant not found"
	case errors.Is(err, auctionerrors.ErrSettlementNotFound):
		return http.StatusNotFound, "settlement not found"
	case errors.Is(err, auctionerrors.ErrDepositRequired):
		return http.StatusForbidden, "deposit payment required"
	case errors.Is(err, auctionerrors.ErrAuctionNotOpen):
		return http.StatusConflict, "auction is not open for bidding"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrInvalidIncrement):
		return http.StatusConflict, "bid amount not aligned to bid step"
	case errors.Is(err, auctionerrors.ErrAlreadyHighestBidder):
		return http.StatusConflict, "bidder already holds the highest bid"
	case errors.Is(err, auctionerrors.ErrAlreadyFinalized):
		return http.StatusConflict, "auction already finalized"
	case errors.Is(err, auctionerrors.ErrDuplicatePayment):
		return http.StatusConflict, "deposit already paid"
	case errors.Is(err, auctionerrors.ErrAlreadyRefunded):
		return http.StatusConflict, "deposit already refunded"
	case errors.Is(err, auctionerrors.ErrInvalidAutoBidCeiling):
		return http.StatusBadRequest, "invalid auto-bid ceiling"
	case errors.Is(err, auctionerrors.ErrPaymentMismatch):
		return http.StatusBadRequest, "confirmed amount mismatch"
	case errors.Is(err, auctionerrors.ErrCancelReasonRequired):
		return http.StatusBadRequest, "cancellation reason required"
	case errors.Is(err, auctionerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrConcurrentModification):
		return http.StatusServiceUnavailable, "auction busy, retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
