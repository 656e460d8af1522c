package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"

	"github.com/stretchr/testify/require"
)

func seedAuction(t *testing.T, repo *MemoryRepo, auctionID string, status model.AuctionStatus, createdAt time.Time) model.Auction {
	t.Helper()

	a := model.Auction{
		AuctionID:     auctionID,
		PropertyID:    "prop-" + auctionID,
		Title:         "Lot " + auctionID,
		StartPrice:    1_000_000,
		BidStep:       100_000,
		DepositAmount: 500_000,
		CurrentPrice:  1_000_000,
		StartTime:     createdAt.Add(time.Hour),
		EndTime:       createdAt.Add(2 * time.Hour),
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, repo.CreateAuction(a))
	return a
}

// Test CreateAuction and GetAuction
func TestMemoryRepo_CreateAndGetAuction(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	a := seedAuction(t, repo, "a1", model.AuctionStatusUpcoming, now)

	got, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, a, got)

	err = repo.CreateAuction(a)
	require.Error(t, err)
	require.True(t, errors.Is(err, auctionerrors.ErrDuplicateAuction))

	_, err = repo.GetAuction("missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}

// Test UpdateAuction version guard
func TestMemoryRepo_UpdateAuction(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	a := seedAuction(t, repo, "a1", model.AuctionStatusUpcoming, now)

	a.Status = model.AuctionStatusOngoing
	require.NoError(t, repo.UpdateAuction(a, 0))

	got, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionStatusOngoing, got.Status)
	require.Equal(t, int64(1), got.Version)

	// Stale writer loses.
	a.Status = model.AuctionStatusCancelled
	err = repo.UpdateAuction(a, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, auctionerrors.ErrVersionConflict))

	got, err = repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionStatusOngoing, got.Status)

	err = repo.UpdateAuction(model.Auction{AuctionID: "missing"}, 0)
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}

// Test AppendBids
func TestMemoryRepo_AppendBids(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	a := seedAuction(t, repo, "a1", model.AuctionStatusOngoing, now)

	bids := []model.Bid{
		{BidID: "b1", AuctionID: "a1", UserID: "user1", Amount: 1_100_000, CreatedAt: now},
		{BidID: "b2", AuctionID: "a1", UserID: "user2", Amount: 1_200_000, CreatedAt: now.Add(time.Millisecond)},
	}
	a.CurrentPrice = 1_200_000
	a.LeaderID = "user2"
	require.NoError(t, repo.AppendBids(a, 0, bids))

	got, err := repo.GetBidsByAuction("a1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b1", got[0].BidID)
	require.Equal(t, "b2", got[1].BidID)

	updated, err := repo.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, int64(1_200_000), updated.CurrentPrice)
	require.Equal(t, "user2", updated.LeaderID)
	require.Equal(t, int64(1), updated.Version)

	// Version conflict leaves the bid history untouched.
	err = repo.AppendBids(a, 0, []model.Bid{{BidID: "b3", AuctionID: "a1", UserID: "user3", Amount: 1_300_000}})
	require.Error(t, err)
	require.True(t, errors.Is(err, auctionerrors.ErrVersionConflict))

	got, err = repo.GetBidsByAuction("a1")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

// Test ListAuctions
func TestMemoryRepo_ListAuctions(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		status := model.AuctionStatusUpcoming
		if i%2 == 0 {
			status = model.AuctionStatusOngoing
		}
		seedAuction(t, repo, fmt.Sprintf("a%d", i), status, now.Add(time.Duration(i)*time.Minute))
	}

	all, err := repo.ListAuctions("", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	// Newest first.
	require.Equal(t, "a4", all[0].AuctionID)
	require.Equal(t, "a0", all[4].AuctionID)

	ongoing, err := repo.ListAuctions(model.AuctionStatusOngoing, 0, 0)
	require.NoError(t, err)
	require.Len(t, ongoing, 3)

	page, err := repo.ListAuctions("", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "a3", page[0].AuctionID)
	require.Equal(t, "a2", page[1].AuctionID)

	empty, err := repo.ListAuctions("", 10, 99)
	require.NoError(t, err)
	require.Empty(t, empty)
}

// Test ListAuctionsDue
func TestMemoryRepo_ListAuctionsDue(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()

	// StartTime = createdAt+1h, EndTime = createdAt+2h.
	seedAuction(t, repo, "due-to-open", model.AuctionStatusUpcoming, now.Add(-90*time.Minute))
	seedAuction(t, repo, "due-to-close", model.AuctionStatusOngoing, now.Add(-3*time.Hour))
	seedAuction(t, repo, "not-yet", model.AuctionStatusUpcoming, now)
	seedAuction(t, repo, "already-done", model.AuctionStatusCompleted, now.Add(-5*time.Hour))

	due, err := repo.ListAuctionsDue(now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, "due-to-close", due[0].AuctionID)
	require.Equal(t, "due-to-open", due[1].AuctionID)
}

// Test participant CRUD
func TestMemoryRepo_Participants(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedAuction(t, repo, "a1", model.AuctionStatusOngoing, now)

	p := model.Participant{ParticipantID: "p1", AuctionID: "a1", UserID: "user1"}
	require.NoError(t, repo.CreateParticipant(p))

	err := repo.CreateParticipant(model.Participant{ParticipantID: "p2", AuctionID: "missing", UserID: "user1"})
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))

	// One row per user per auction.
	err = repo.CreateParticipant(model.Participant{ParticipantID: "p3", AuctionID: "a1", UserID: "user1"})
	require.True(t, errors.Is(err, auctionerrors.ErrDuplicateParticipant))

	got, err := repo.GetParticipant("a1", "user1")
	require.NoError(t, err)
	require.Equal(t, "p1", got.ParticipantID)

	_, err = repo.GetParticipant("a1", "stranger")
	require.True(t, errors.Is(err, auctionerrors.ErrParticipantNotFound))

	got.DepositPaid = true
	got.DepositTxID = "tx-1"
	require.NoError(t, repo.UpdateParticipant(got))

	byID, err := repo.GetParticipantByID("p1")
	require.NoError(t, err)
	require.True(t, byID.DepositPaid)
	require.Equal(t, "tx-1", byID.DepositTxID)

	all, err := repo.GetParticipantsByAuction("a1")
	require.NoError(t, err)
	require.Len(t, all, 1)
}

// Test GetAuctionsByUser
func TestMemoryRepo_GetAuctionsByUser(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedAuction(t, repo, "a1", model.AuctionStatusOngoing, now)
	seedAuction(t, repo, "a2", model.AuctionStatusUpcoming, now)

	require.NoError(t, repo.CreateParticipant(model.Participant{ParticipantID: "p1", AuctionID: "a1", UserID: "user1"}))
	require.NoError(t, repo.CreateParticipant(model.Participant{ParticipantID: "p2", AuctionID: "a2", UserID: "user1"}))
	require.NoError(t, repo.CreateParticipant(model.Participant{ParticipantID: "p3", AuctionID: "a1", UserID: "user2"}))

	auctions, err := repo.GetAuctionsByUser("user1")
	require.NoError(t, err)
	require.Len(t, auctions, 2)

	auctions, err = repo.GetAuctionsByUser("nobody")
	require.NoError(t, err)
	require.Empty(t, auctions)
}

// Test settlement persistence
func TestMemoryRepo_Settlements(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedAuction(t, repo, "a1", model.AuctionStatusCompleted, now)

	_, err := repo.GetSettlement("a1")
	require.True(t, errors.Is(err, auctionerrors.ErrSettlementNotFound))

	winner := "user1"
	res := model.SettlementResult{
		AuctionID:     "a1",
		Status:        model.AuctionStatusCompleted,
		WinnerID:      &winner,
		WinningAmount: 1_500_000,
		SettledAt:     now,
	}
	require.NoError(t, repo.SaveSettlement(res))

	got, err := repo.GetSettlement("a1")
	require.NoError(t, err)
	require.Equal(t, res, got)

	err = repo.SaveSettlement(model.SettlementResult{AuctionID: "missing"})
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}
