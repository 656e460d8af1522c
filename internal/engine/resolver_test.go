package engine

import (
	"testing"
	"time"

	model "auction-engine/internal/models"

	"github.com/stretchr/testify/require"
)

func manualBid(userID string, amount int64, at time.Time) model.Bid {
	return model.Bid{
		BidID:     "bid-" + userID,
		AuctionID: "a1",
		UserID:    userID,
		Amount:    amount,
		CreatedAt: at,
	}
}

func autoBid(userID string, amount, max int64, at time.Time) model.Bid {
	return model.Bid{
		BidID:     "bid-" + userID,
		AuctionID: "a1",
		UserID:    userID,
		Amount:    amount,
		IsAutoBid: true,
		MaxAmount: &max,
		CreatedAt: at,
	}
}

// Test StandingMandates
func TestStandingMandates(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	history := []model.Bid{
		autoBid("user1", 1_100_000, 2_000_000, now),           // superseded below
		autoBid("user2", 1_200_000, 1_800_000, now.Add(time.Second)),
		manualBid("user1", 1_300_000, now.Add(2*time.Second)), // manual supersedes user1's mandate
		autoBid("user3", 1_400_000, 1_400_000, now.Add(3*time.Second)), // ceiling at current price: exhausted
	}

	mandates := StandingMandates(history, 1_400_000, "")
	require.Len(t, mandates, 1)
	require.Equal(t, "user2", mandates[0].UserID)
	require.Equal(t, int64(1_800_000), mandates[0].Max)

	// The incoming bidder's own mandate is excluded.
	mandates = StandingMandates(history, 1_400_000, "user2")
	require.Empty(t, mandates)
}

// Test ResolveAutoBids
func TestResolveAutoBids(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	auction := model.Auction{
		AuctionID:    "a1",
		StartPrice:   1_000_000,
		BidStep:      100_000,
		CurrentPrice: 1_000_000,
	}

	t.Run("no_standing_mandates", func(t *testing.T) {
		t.Parallel()

		incoming := manualBid("userA", 1_100_000, now)
		res := ResolveAutoBids(auction, incoming, nil, now)

		require.Equal(t, int64(1_100_000), res.NewPrice)
		require.Equal(t, "userA", res.NewLeaderID)
		require.Empty(t, res.Generated)
	})

	t.Run("manual_bid_against_higher_ceiling", func(t *testing.T) {
		t.Parallel()

		// A bids 1,100,000 manually; B holds an auto-bid mandate up to
		// 1,500,000. B retakes the lead one step above A's bid.
		incoming := manualBid("userA", 1_100_000, now)
		standing := []Mandate{{UserID: "userB", Max: 1_500_000, Seq: 0}}

		res := ResolveAutoBids(auction, incoming, standing, now)

		require.Equal(t, int64(1_200_000), res.NewPrice)
		require.Equal(t, "userB", res.NewLeaderID)
		require.Len(t, res.Generated, 1)
		require.Equal(t, "userB", res.Generated[0].UserID)
		require.Equal(t, int64(1_200_000), res.Generated[0].Amount)
		require.True(t, res.Generated[0].IsAutoBid)
		require.Equal(t, int64(1_500_000), *res.Generated[0].MaxAmount)
		require.True(t, res.Generated[0].CreatedAt.After(incoming.CreatedAt))
	})

	t.Run("incoming_auto_bid_with_lower_ceiling_loses", func(t *testing.T) {
		t.Parallel()

		// Incoming Y-auto up to 1,300,000 against standing mandate up to
		// 1,600,000: the standing mandate wins at the loser's ceiling plus
		// one step.
		incoming := autoBid("userY", 1_100_000, 1_300_000, now)
		standing := []Mandate{{UserID: "userX", Max: 1_600_000, Seq: 0}}

		res := ResolveAutoBids(auction, incoming, standing, now)

		require.Equal(t, int64(1_400_000), res.NewPrice)
		require.Equal(t, "userX", res.NewLeaderID)
		require.Len(t, res.Generated, 1)
		require.Equal(t, int64(1_400_000), res.Generated[0].Amount)
	})

	t.Run("incoming_auto_bid_with_higher_ceiling_defends", func(t *testing.T) {
		t.Parallel()

		// Standing mandate up to 1,400,000 pushes the incoming 1,600,000
		// ceiling; the incumbent answers one step above the pushed price.
		incoming := autoBid("userY", 1_100_000, 1_600_000, now)
		standing := []Mandate{{UserID: "userX", Max: 1_400_000, Seq: 0}}

		res := ResolveAutoBids(auction, incoming, standing, now)

		require.Equal(t, int64(1_500_000), res.NewPrice)
		require.Equal(t, "userY", res.NewLeaderID)
		require.Len(t, res.Generated, 2)
		require.Equal(t, "userX", res.Generated[0].UserID)
		require.Equal(t, int64(1_400_000), res.Generated[0].Amount)
		require.Equal(t, "userY", res.Generated[1].UserID)
		require.Equal(t, int64(1_500_000), res.Generated[1].Amount)
	})

	t.Run("equal_ceilings_earlier_mandate_wins", func(t *testing.T) {
		t.Parallel()

		incoming := autoBid("userY", 1_100_000, 1_500_000, now)
		standing := []Mandate{{UserID: "userX", Max: 1_500_000, Seq: 0}}

		res := ResolveAutoBids(auction, incoming, standing, now)

		// The earlier mandate takes the price at the shared ceiling.
		require.Equal(t, int64(1_500_000), res.NewPrice)
		require.Equal(t, "userX", res.NewLeaderID)
	})

	t.Run("off_grid_ceiling_paid_exactly", func(t *testing.T) {
		t.Parallel()

		incoming := manualBid("userA", 1_100_000, now)
		standing := []Mandate{{UserID: "userB", Max: 1_150_000, Seq: 0}}

		res := ResolveAutoBids(auction, incoming, standing, now)

		require.Equal(t, int64(1_150_000), res.NewPrice)
		require.Equal(t, "userB", res.NewLeaderID)
	})

	t.Run("three_way_battle_exhausts_all_mandates", func(t *testing.T) {
		t.Parallel()

		incoming := autoBid("userC", 1_100_000, 2_000_000, now)
		standing := []Mandate{
			{UserID: "userA", Max: 1_500_000, Seq: 0},
			{UserID: "userB", Max: 1_800_000, Seq: 1},
		}

		res := ResolveAutoBids(auction, incoming, standing, now)

		// Strongest opponent first: B pushes to 1,800,000; C answers at
		// 1,900,000; A can no longer compete.
		require.Equal(t, "userC", res.NewLeaderID)
		require.Equal(t, int64(1_900_000), res.NewPrice)
		for _, g := range res.Generated {
			require.True(t, g.IsAutoBid)
			require.LessOrEqual(t, g.Amount, res.NewPrice)
		}
	})
}

// Scenario from the deposit/bidding flow: start 1,000,000 with step 100,000,
// A bids 1,100,000 manually, B holds auto up to 1,500,000; price lands at
// 1,200,000 with B leading and an audit row for B's synthetic bid.
func TestResolveAutoBids_AuditTrail(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	auction := model.Auction{AuctionID: "a1", StartPrice: 1_000_000, BidStep: 100_000, CurrentPrice: 1_000_000}

	incoming := manualBid("bidderA", 1_100_000, now)
	standing := []Mandate{{UserID: "bidderB", Max: 1_500_000, Seq: 0}}

	res := ResolveAutoBids(auction, incoming, standing, now)

	require.Equal(t, int64(1_200_000), res.NewPrice)
	require.Equal(t, "bidderB", res.NewLeaderID)
	require.Len(t, res.Generated, 1)

	audit := res.Generated[0]
	require.NotEmpty(t, audit.BidID)
	require.Equal(t, "a1", audit.AuctionID)
	require.Equal(t, "bidderB", audit.UserID)
	require.Equal(t, int64(1_200_000), audit.Amount)
	require.True(t, audit.IsAutoBid)
}
