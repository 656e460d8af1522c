package auction

import (
	"context"
	"time"

	"auction-engine/utils"
)

// StartSweeper runs a background loop that finalizes due auctions even when
// no request touches them: UPCOMING auctions open at startTime and ONGOING
// auctions complete (and settle) at endTime. Transitions go through the same
// per-auction lock as bidding. Stops when ctx is cancelled.
func (s *AuctionService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepDue()
			}
		}
	}()
}

func (s *AuctionService) sweepDue() {
	now := time.Now().UTC()
	due, err := s.repo.ListAuctionsDue(now)
	if err != nil {
		utils.Error("sweeper: list due auctions", map[string]any{"error": err.Error()})
		return
	}

	for _, stale := range due {
		mu := s.lockFor(stale.AuctionID)
		mu.Lock()
		// Reload under the lock; a concurrent bid may have extended the
		// auction since the listing.
		fresh, err := s.repo.GetAuction(stale.AuctionID)
		if err == nil {
			_, err = s.sweepLocked(fresh, time.Now().UTC())
		}
		mu.Unlock()

		if err != nil {
			utils.Error("sweeper: advance auction", map[string]any{
				"auction_id": stale.AuctionID,
				"error":      err.Error(),
			})
		}
	}
}
