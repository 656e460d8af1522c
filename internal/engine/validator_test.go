package engine

import (
	"errors"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"

	"github.com/stretchr/testify/require"
)

func openAuction(now time.Time) model.Auction {
	return model.Auction{
		AuctionID:     "a1",
		StartPrice:    1_000_000,
		BidStep:       100_000,
		DepositAmount: 500_000,
		CurrentPrice:  1_000_000,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		Status:        model.AuctionStatusOngoing,
	}
}

func paidParticipant(userID string) *model.Participant {
	return &model.Participant{
		ParticipantID: "p-" + userID,
		AuctionID:     "a1",
		UserID:        userID,
		DepositPaid:   true,
	}
}

func ceiling(v int64) *int64 { return &v }

// Tests ValidateBid
func TestValidateBid(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name          string
		mutate        func(a *model.Auction)
		bid           model.Bid
		participant   *model.Participant
		expectedError error
	}{
		{
			name:        "valid_first_bid",
			bid:         model.Bid{UserID: "user1", Amount: 1_100_000},
			participant: paidParticipant("user1"),
		},
		{
			name:        "valid_multiple_steps",
			bid:         model.Bid{UserID: "user1", Amount: 1_500_000},
			participant: paidParticipant("user1"),
		},
		{
			name:          "upcoming_auction",
			mutate:        func(a *model.Auction) { a.Status = model.AuctionStatusUpcoming },
			bid:           model.Bid{UserID: "user1", Amount: 1_100_000},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrAuctionNotOpen,
		},
		{
			name:          "completed_auction",
			mutate:        func(a *model.Auction) { a.Status = model.AuctionStatusCompleted },
			bid:           model.Bid{UserID: "user1", Amount: 1_100_000},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrAuctionNotOpen,
		},
		{
			name:          "past_end_time_with_stale_status",
			mutate:        func(a *model.Auction) { a.EndTime = now.Add(-time.Minute) },
			bid:           model.Bid{UserID: "user1", Amount: 1_100_000},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrAuctionNotOpen,
		},
		{
			name:          "no_participant",
			bid:           model.Bid{UserID: "user1", Amount: 1_100_000},
			participant:   nil,
			expectedError: auctionerrors.ErrDepositRequired,
		},
		{
			name: "deposit_unpaid",
			bid:  model.Bid{UserID: "user1", Amount: 1_100_000},
			participant: &model.Participant{
				AuctionID: "a1", UserID: "user1", DepositPaid: false,
			},
			expectedError: auctionerrors.ErrDepositRequired,
		},
		{
			name:          "bid_below_minimum",
			bid:           model.Bid{UserID: "user1", Amount: 1_050_000},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:          "bid_equal_to_current_price",
			bid:           model.Bid{UserID: "user1", Amount: 1_000_000},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:          "off_grid_increment",
			bid:           model.Bid{UserID: "user1", Amount: 1_150_000},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrInvalidIncrement,
		},
		{
			name:          "auto_bid_missing_ceiling",
			bid:           model.Bid{UserID: "user1", Amount: 1_100_000, IsAutoBid: true},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrInvalidAutoBidCeiling,
		},
		{
			name:          "auto_bid_ceiling_below_amount",
			bid:           model.Bid{UserID: "user1", Amount: 1_100_000, IsAutoBid: true, MaxAmount: ceiling(1_050_000)},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrInvalidAutoBidCeiling,
		},
		{
			name:        "auto_bid_ceiling_equal_to_amount",
			bid:         model.Bid{UserID: "user1", Amount: 1_100_000, IsAutoBid: true, MaxAmount: ceiling(1_100_000)},
			participant: paidParticipant("user1"),
		},
		{
			name:          "leader_outbids_themself",
			mutate:        func(a *model.Auction) { a.LeaderID = "user1"; a.CurrentPrice = 1_100_000 },
			bid:           model.Bid{UserID: "user1", Amount: 1_200_000},
			participant:   paidParticipant("user1"),
			expectedError: auctionerrors.ErrAlreadyHighestBidder,
		},
		{
			name:        "non_leader_outbids_leader",
			mutate:      func(a *model.Auction) { a.LeaderID = "user2"; a.CurrentPrice = 1_100_000 },
			bid:         model.Bid{UserID: "user1", Amount: 1_200_000},
			participant: paidParticipant("user1"),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := openAuction(now)
			if tc.mutate != nil {
				tc.mutate(&a)
			}
			tc.bid.AuctionID = a.AuctionID
			tc.bid.CreatedAt = now

			err := ValidateBid(a, tc.bid, tc.participant, now)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Check order matters: a closed auction reports AuctionNotOpen even when the
// amount would also be invalid.
func TestValidateBid_ShortCircuitOrder(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := openAuction(now)
	a.Status = model.AuctionStatusCancelled

	err := ValidateBid(a, model.Bid{UserID: "user1", Amount: 1}, nil, now)
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotOpen))
}
