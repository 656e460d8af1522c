package engine

import (
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// ValidateBid decides whether a proposed bid is legal given current auction
// state. Checks run in order and short-circuit on the first failure. The
// function has no side effects and is safe to call concurrently.
//
// Check order:
//  1. auction status must be ONGOING
//  2. now must fall within [startTime, endTime)
//  3. participant must exist with the deposit paid
//  4. amount must be at least currentPrice + bidStep, in bidStep increments
//  5. an auto-bid must carry a ceiling at or above its own amount
//  6. the current leader may not outbid themself
func ValidateBid(a model.Auction, proposed model.Bid, participant *model.Participant, now time.Time) error {
	if a.Status != model.AuctionStatusOngoing {
		return fmt.Errorf("auction %s is %s: %w", a.AuctionID, a.Status, auctionerrors.ErrAuctionNotOpen)
	}
	if now.Before(a.StartTime) || !now.Before(a.EndTime) {
		// Guards against races at the window boundary.
		return fmt.Errorf("auction %s outside bidding window: %w", a.AuctionID, auctionerrors.ErrAuctionNotOpen)
	}
	if participant == nil || !participant.DepositPaid {
		return fmt.Errorf("user %s on auction %s: %w", proposed.UserID, a.AuctionID, auctionerrors.ErrDepositRequired)
	}
	if proposed.Amount < a.CurrentPrice+a.BidStep {
		return fmt.Errorf("bid %d below minimum %d: %w", proposed.Amount, a.CurrentPrice+a.BidStep, auctionerrors.ErrBidTooLow)
	}
	if (proposed.Amount-a.CurrentPrice)%a.BidStep != 0 {
		return fmt.Errorf("bid %d is not %d plus a multiple of %d: %w",
			proposed.Amount, a.CurrentPrice, a.BidStep, auctionerrors.ErrInvalidIncrement)
	}
	if proposed.IsAutoBid {
		if proposed.MaxAmount == nil || *proposed.MaxAmount < proposed.Amount {
			return fmt.Errorf("auto-bid for %d: %w", proposed.Amount, auctionerrors.ErrInvalidAutoBidCeiling)
		}
	}
	if a.LeaderID != "" && proposed.UserID == a.LeaderID {
		return fmt.Errorf("user %s: %w", proposed.UserID, auctionerrors.ErrAlreadyHighestBidder)
	}
	return nil
}
