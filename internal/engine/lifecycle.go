package engine

import (
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// Advance applies the automatic time-driven transitions to an auction:
// UPCOMING becomes ONGOING at startTime, ONGOING becomes COMPLETED at endTime
// with the winner taken from the current leader (nil when no bids were
// placed). Idempotent; returns the possibly-updated auction and whether it
// changed.
func Advance(a model.Auction, now time.Time) (model.Auction, bool) {
	changed := false

	if a.Status == model.AuctionStatusUpcoming && !now.Before(a.StartTime) {
		a.Status = model.AuctionStatusOngoing
		changed = true
	}
	if a.Status == model.AuctionStatusOngoing && !now.Before(a.EndTime) {
		a.Status = model.AuctionStatusCompleted
		if a.LeaderID != "" {
			winner := a.LeaderID
			a.WinnerID = &winner
		}
		changed = true
	}
	if changed {
		a.UpdatedAt = now
	}
	return a, changed
}

// Cancel moves an auction to CANCELLED. Allowed only from UPCOMING or ONGOING
// and only with a reason; finalized auctions surface ErrAlreadyFinalized
// rather than a silent no-op.
func Cancel(a model.Auction, reason string, now time.Time) (model.Auction, error) {
	if reason == "" {
		return a, fmt.Errorf("cancel auction %s: %w", a.AuctionID, auctionerrors.ErrCancelReasonRequired)
	}
	if a.Status.IsTerminal() {
		return a, fmt.Errorf("cancel auction %s in status %s: %w", a.AuctionID, a.Status, auctionerrors.ErrAlreadyFinalized)
	}
	a.Status = model.AuctionStatusCancelled
	a.CancelReason = reason
	a.UpdatedAt = now
	return a, nil
}

// ExtendForAntiSnipe pushes out the end time when a bid lands inside the
// grace window before close, deterring last-second sniping. The new end time
// is bidTime + extension.
func ExtendForAntiSnipe(a model.Auction, bidTime time.Time, window, extension time.Duration) (model.Auction, bool) {
	if window <= 0 || extension <= 0 {
		return a, false
	}
	if a.EndTime.Sub(bidTime) > window {
		return a, false
	}
	a.EndTime = bidTime.Add(extension)
	return a, true
}
