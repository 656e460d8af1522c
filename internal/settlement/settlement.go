package settlement

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/deposit"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Engine determines the outcome of a finalized auction: who wins, which
// deposit gets captured, and which deposits get refunded.
type Engine struct {
	repo   repository.AuctionDB
	ledger *deposit.Ledger
}

// NewEngine creates a settlement engine over the given storage and ledger.
func NewEngine(repo repository.AuctionDB, ledger *deposit.Ledger) *Engine {
	return &Engine{repo: repo, ledger: ledger}
}

// Settle produces the settlement for a COMPLETED or CANCELLED auction.
//
// On COMPLETED with a winner: a capture instruction for the winner's deposit
// against the final price, and refund tickets for every other paid
// participant. On COMPLETED with no bids: nothing to capture or refund. On
// CANCELLED: refund tickets for all paid participants regardless of bid
// standing.
//
// Idempotent: re-invoking on a settled auction returns the recorded result
// without reissuing instructions. Callers serialize Settle with bidding and
// cancellation on the same auction.
func (e *Engine) Settle(a model.Auction, now time.Time) (model.SettlementResult, error) {
	if !a.Status.IsTerminal() {
		return model.SettlementResult{}, fmt.Errorf("settle auction %s in status %s: %w",
			a.AuctionID, a.Status, auctionerrors.ErrAuctionNotOpen)
	}

	if stored, err := e.repo.GetSettlement(a.AuctionID); err == nil {
		return stored, nil
	} else if !errors.Is(err, auctionerrors.ErrSettlementNotFound) {
		return model.SettlementResult{}, fmt.Errorf("settle auction %s: %w", a.AuctionID, err)
	}

	participants, err := e.repo.GetParticipantsByAuction(a.AuctionID)
	if err != nil {
		return model.SettlementResult{}, fmt.Errorf("settle auction %s: %w", a.AuctionID, err)
	}

	result := model.SettlementResult{
		AuctionID: a.AuctionID,
		Status:    a.Status,
		WinnerID:  a.WinnerID,
		Refunds:   []model.RefundTicket{},
		SettledAt: now,
	}
	if a.Status == model.AuctionStatusCompleted && a.WinnerID != nil {
		result.WinningAmount = a.CurrentPrice
		result.Capture = &model.CaptureInstruction{
			AuctionID:     a.AuctionID,
			UserID:        *a.WinnerID,
			DepositAmount: a.DepositAmount,
			WinningAmount: a.CurrentPrice,
		}
	}

	for _, p := range participants {
		if !p.DepositPaid || p.IsRefunded {
			continue
		}
		if result.Capture != nil && p.UserID == result.Capture.UserID {
			continue
		}
		ticket, err := e.ledger.IssueRefund(p.ParticipantID, now)
		if err != nil {
			// A failed refund must be retryable without double-refunding the
			// rest; surface before recording the settlement.
			return model.SettlementResult{}, fmt.Errorf("settle auction %s: refund participant %s: %w",
				a.AuctionID, p.ParticipantID, err)
		}
		result.Refunds = append(result.Refunds, ticket)
	}

	if err := e.repo.SaveSettlement(result); err != nil {
		return model.SettlementResult{}, fmt.Errorf("settle auction %s: %w", a.AuctionID, err)
	}

	utils.Info("auction settled", map[string]any{
		"auction_id": a.AuctionID,
		"status":     string(a.Status),
		"refunds":    len(result.Refunds),
		"captured":   result.Capture != nil,
	})
	return result, nil
}
