package models

import (
	"sort"
	"time"
)

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionStatusUpcoming  AuctionStatus = "UPCOMING"
	AuctionStatusOngoing   AuctionStatus = "ONGOING"
	AuctionStatusCompleted AuctionStatus = "COMPLETED"
	AuctionStatusCancelled AuctionStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are possible.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusCompleted || s == AuctionStatusCancelled
}

// Auction represents one property up for bid. Money amounts are integer VND.
type Auction struct {
	AuctionID     string        `json:"auction_id"`
	PropertyID    string        `json:"property_id"`
	Title         string        `json:"title"`
	StartPrice    int64         `json:"start_price"`
	BidStep       int64         `json:"bid_step"`
	DepositAmount int64         `json:"deposit_amount"`
	CurrentPrice  int64         `json:"current_price"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	Status        AuctionStatus `json:"status"`
	LeaderID      string        `json:"leader_id,omitempty"`
	WinnerID      *string       `json:"winner_id,omitempty"`
	CancelReason  string        `json:"cancel_reason,omitempty"`

	// Version is the optimistic concurrency token; it increments on every mutation.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bid is an immutable record of one proposed price by one participant.
// MaxAmount is set only when IsAutoBid is true.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	IsAutoBid bool      `json:"is_auto_bid"`
	MaxAmount *int64    `json:"max_amount,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant joins a user to an auction. DepositPaid flips true only via a
// verified payment confirmation, never by the bidding path.
type Participant struct {
	ParticipantID string `json:"participant_id"`
	AuctionID     string `json:"auction_id"`
	UserID        string `json:"user_id"`
	DepositPaid   bool   `json:"deposit_paid"`
	DepositTxID   string `json:"deposit_tx_id,omitempty"`
	IsRefunded    bool   `json:"is_refunded"`
}

// RefundTicket is an issued refund instruction for one participant's deposit.
type RefundTicket struct {
	TicketID      string    `json:"ticket_id"`
	ParticipantID string    `json:"participant_id"`
	AuctionID     string    `json:"auction_id"`
	UserID        string    `json:"user_id"`
	Amount        int64     `json:"amount"`
	IssuedAt      time.Time `json:"issued_at"`
}

// CaptureInstruction tells the payment collaborator to apply the winner's
// deposit against the final price. Collecting the remainder is its job.
type CaptureInstruction struct {
	AuctionID     string `json:"auction_id"`
	UserID        string `json:"user_id"`
	DepositAmount int64  `json:"deposit_amount"`
	WinningAmount int64  `json:"winning_amount"`
}

// SettlementResult is recorded exactly once per auction; re-settling returns
// the stored result without reissuing instructions.
type SettlementResult struct {
	AuctionID     string              `json:"auction_id"`
	Status        AuctionStatus       `json:"status"`
	WinnerID      *string             `json:"winner_id,omitempty"`
	WinningAmount int64               `json:"winning_amount"`
	Capture       *CaptureInstruction `json:"capture,omitempty"`
	Refunds       []RefundTicket      `json:"refunds"`
	SettledAt     time.Time           `json:"settled_at"`
}

// SortBidsForDisplay orders a bid history by amount descending, ties broken by
// createdAt ascending (the earlier bid wins ties).
func SortBidsForDisplay(bids []Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].Amount != bids[j].Amount {
			return bids[i].Amount > bids[j].Amount
		}
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})
}
