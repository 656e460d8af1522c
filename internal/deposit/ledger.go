package deposit

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Ledger tracks per-user, per-auction deposit payment and refund state.
//
// DepositPaid flips true only through RecordPayment, which consumes a
// verified confirmation from the external payment gateway. The bidding path
// has no way to set it.
type Ledger struct {
	repo repository.AuctionDB
}

// NewLedger creates a deposit ledger over the given storage.
func NewLedger(repo repository.AuctionDB) *Ledger {
	return &Ledger{repo: repo}
}

// RecordPayment applies a gateway confirmation, creating the participant row
// with the deposit marked paid. It rejects confirmations for unknown
// auctions, finalized auctions, mismatched amounts, and participants who
// already paid.
func (l *Ledger) RecordPayment(auctionID, userID, txID string, amountConfirmed int64) (model.Participant, error) {
	a, err := l.repo.GetAuction(auctionID)
	if err != nil {
		return model.Participant{}, fmt.Errorf("ledger: record payment: %w", err)
	}
	if a.Status.IsTerminal() {
		return model.Participant{}, fmt.Errorf("ledger: auction %s is %s: %w", auctionID, a.Status, auctionerrors.ErrAlreadyFinalized)
	}
	if amountConfirmed != a.DepositAmount {
		return model.Participant{}, fmt.Errorf("ledger: confirmed %d, deposit is %d: %w",
			amountConfirmed, a.DepositAmount, auctionerrors.ErrPaymentMismatch)
	}

	existing, err := l.repo.GetParticipant(auctionID, userID)
	switch {
	case err == nil:
		if existing.DepositPaid {
			return model.Participant{}, fmt.Errorf("ledger: tx %s for user %s: %w", txID, userID, auctionerrors.ErrDuplicatePayment)
		}
		existing.DepositPaid = true
		existing.DepositTxID = txID
		if err := l.repo.UpdateParticipant(existing); err != nil {
			return model.Participant{}, fmt.Errorf("ledger: record payment: %w", err)
		}
		return existing, nil
	case errors.Is(err, auctionerrors.ErrParticipantNotFound):
		p := model.Participant{
			ParticipantID: utils.GenerateID(),
			AuctionID:     auctionID,
			UserID:        userID,
			DepositPaid:   true,
			DepositTxID:   txID,
		}
		if err := l.repo.CreateParticipant(p); err != nil {
			return model.Participant{}, fmt.Errorf("ledger: record payment: %w", err)
		}
		return p, nil
	default:
		return model.Participant{}, fmt.Errorf("ledger: record payment: %w", err)
	}
}

// IssueRefund flips a paid participant to refunded and produces a refund
// ticket for the deposit amount. A second issuance for the same participant
// fails with ErrAlreadyRefunded.
func (l *Ledger) IssueRefund(participantID string, now time.Time) (model.RefundTicket, error) {
	p, err := l.repo.GetParticipantByID(participantID)
	if err != nil {
		return model.RefundTicket{}, fmt.Errorf("ledger: issue refund: %w", err)
	}
	if !p.DepositPaid {
		return model.RefundTicket{}, fmt.Errorf("ledger: participant %s never paid: %w", participantID, auctionerrors.ErrParticipantNotFound)
	}
	if p.IsRefunded {
		return model.RefundTicket{}, fmt.Errorf("ledger: participant %s: %w", participantID, auctionerrors.ErrAlreadyRefunded)
	}

	a, err := l.repo.GetAuction(p.AuctionID)
	if err != nil {
		return model.RefundTicket{}, fmt.Errorf("ledger: issue refund: %w", err)
	}

	p.IsRefunded = true
	if err := l.repo.UpdateParticipant(p); err != nil {
		return model.RefundTicket{}, fmt.Errorf("ledger: issue refund: %w", err)
	}

	return model.RefundTicket{
		TicketID:      utils.GenerateID(),
		ParticipantID: p.ParticipantID,
		AuctionID:     p.AuctionID,
		UserID:        p.UserID,
		Amount:        a.DepositAmount,
		IssuedAt:      now,
	}, nil
}
