package auction

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/deposit"
	"auction-engine/internal/engine"
	"auction-engine/internal/events"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/internal/settlement"
	"auction-engine/utils"
)

// Options tune the bidding policies of the service.
type Options struct {
	// AntiSnipeWindow and AntiSnipeExtension control the close-extension rule;
	// a bid landing within the window pushes endTime to bidTime + extension.
	// Zero disables the rule.
	AntiSnipeWindow    time.Duration
	AntiSnipeExtension time.Duration
	// MaxBidRetries bounds internal retries on version conflicts before a bid
	// fails with ErrConcurrentModification.
	MaxBidRetries int
}

// CreateAuctionInput carries the operator's parameters for a new auction.
type CreateAuctionInput struct {
	PropertyID    string
	Title         string
	StartPrice    int64
	BidStep       int64
	DepositAmount int64
	StartTime     time.Time
	EndTime       time.Time
}

// BidResult is the outcome of an accepted bid: the recorded bid, any
// synthetic auto-bids it triggered, and the updated auction state.
type BidResult struct {
	Bid       model.Bid     `json:"bid"`
	Generated []model.Bid   `json:"generated,omitempty"`
	Auction   model.Auction `json:"auction"`
	Extended  bool          `json:"extended"`
}

// AuctionStats summarizes an auction for the admin view.
type AuctionStats struct {
	BidCount         int `json:"bid_count"`
	ParticipantCount int `json:"participant_count"`
	DepositsPaid     int `json:"deposits_paid"`
}

// AuctionDetail is the admin-facing read model: the auction plus its full bid
// history and participant roster.
type AuctionDetail struct {
	Auction      model.Auction       `json:"auction"`
	Bids         []model.Bid         `json:"bids"`
	Participants []model.Participant `json:"participants"`
	Stats        AuctionStats        `json:"stats"`
}

// AuctionService orchestrates bidding, lifecycle, deposits and settlement.
//
// All state-changing operations on one auction are serialized through a
// per-auction mutex; the repository's version check is a second guard.
// Different auctions proceed concurrently without coordination.
type AuctionService struct {
	repo      repository.AuctionDB
	ledger    *deposit.Ledger
	settler   *settlement.Engine
	publisher events.Publisher
	opts      Options
	locks     sync.Map // auctionID -> *sync.Mutex
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, ledger *deposit.Ledger, settler *settlement.Engine, publisher events.Publisher, opts Options) *AuctionService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if opts.MaxBidRetries <= 0 {
		opts.MaxBidRetries = 3
	}
	return &AuctionService{
		repo:      repo,
		ledger:    ledger,
		settler:   settler,
		publisher: publisher,
		opts:      opts,
	}
}

func (s *AuctionService) lockFor(auctionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(auctionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// CreateAuction registers a new auction in UPCOMING state.
func (s *AuctionService) CreateAuction(input CreateAuctionInput) (model.Auction, error) {
	if input.PropertyID == "" || input.Title == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing propertyID or title", auctionerrors.ErrInvalidAuction)
	}
	if input.StartPrice <= 0 || input.BidStep <= 0 || input.DepositAmount <= 0 {
		return model.Auction{}, fmt.Errorf("service: %w - prices must be positive", auctionerrors.ErrInvalidAuction)
	}
	if !input.EndTime.After(input.StartTime) {
		return model.Auction{}, fmt.Errorf("service: %w - endTime must be after startTime", auctionerrors.ErrInvalidAuction)
	}

	now := time.Now().UTC()
	a := model.Auction{
		AuctionID:     utils.GenerateID(),
		PropertyID:    input.PropertyID,
		Title:         input.Title,
		StartPrice:    input.StartPrice,
		BidStep:       input.BidStep,
		DepositAmount: input.DepositAmount,
		CurrentPrice:  input.StartPrice,
		StartTime:     input.StartTime.UTC(),
		EndTime:       input.EndTime.UTC(),
		Status:        model.AuctionStatusUpcoming,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateAuction(a); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	utils.Info("auction created", map[string]any{
		"auction_id":  a.AuctionID,
		"property_id": a.PropertyID,
		"start_price": a.StartPrice,
	})
	return a, nil
}

// PlaceBid validates and records a bid, resolving standing auto-bid mandates
// and applying the anti-snipe extension.
func (s *AuctionService) PlaceBid(auctionID, userID string, amount int64, isAutoBid bool, maxAmount *int64) (BidResult, error) {
	if auctionID == "" || userID == "" {
		return BidResult{}, fmt.Errorf("service: %w - missing auctionID or userID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return BidResult{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	mu := s.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < s.opts.MaxBidRetries; attempt++ {
		result, err := s.placeBidOnce(auctionID, userID, amount, isAutoBid, maxAmount)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, auctionerrors.ErrVersionConflict) {
			return BidResult{}, err
		}
		lastErr = err
	}
	return BidResult{}, fmt.Errorf("service: bid on auction %s: %w: %v",
		auctionID, auctionerrors.ErrConcurrentModification, lastErr)
}

// placeBidOnce runs one validate-resolve-apply round; the caller holds the
// auction lock and retries on version conflicts.
func (s *AuctionService) placeBidOnce(auctionID, userID string, amount int64, isAutoBid bool, maxAmount *int64) (BidResult, error) {
	now := time.Now().UTC()

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return BidResult{}, fmt.Errorf("service: place bid: %w", err)
	}
	a, err = s.sweepLocked(a, now)
	if err != nil {
		return BidResult{}, fmt.Errorf("service: place bid: %w", err)
	}

	var participantPtr *model.Participant
	participant, err := s.repo.GetParticipant(auctionID, userID)
	if err == nil {
		participantPtr = &participant
	} else if !errors.Is(err, auctionerrors.ErrParticipantNotFound) {
		return BidResult{}, fmt.Errorf("service: place bid: %w", err)
	}

	proposed := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		IsAutoBid: isAutoBid,
		MaxAmount: maxAmount,
		CreatedAt: now,
	}
	if err := engine.ValidateBid(a, proposed, participantPtr, now); err != nil {
		return BidResult{}, fmt.Errorf("service: place bid: %w", err)
	}

	history, err := s.repo.GetBidsByAuction(auctionID)
	if err != nil {
		return BidResult{}, fmt.Errorf("service: place bid: %w", err)
	}
	standing := engine.StandingMandates(history, a.CurrentPrice, userID)
	resolution := engine.ResolveAutoBids(a, proposed, standing, now)

	updated := a
	updated.CurrentPrice = resolution.NewPrice
	updated.LeaderID = resolution.NewLeaderID
	updated, extended := engine.ExtendForAntiSnipe(updated, now, s.opts.AntiSnipeWindow, s.opts.AntiSnipeExtension)
	updated.UpdatedAt = now

	accepted := append([]model.Bid{proposed}, resolution.Generated...)
	if err := s.repo.AppendBids(updated, a.Version, accepted); err != nil {
		return BidResult{}, fmt.Errorf("service: place bid: %w", err)
	}
	updated.Version = a.Version + 1

	s.publisher.PublishBidAccepted(updated, proposed, resolution.Generated)
	utils.Info("bid accepted", map[string]any{
		"auction_id":    auctionID,
		"user_id":       userID,
		"amount":        amount,
		"current_price": updated.CurrentPrice,
		"leader_id":     updated.LeaderID,
		"auto_bids":     len(resolution.Generated),
		"extended":      extended,
	})

	return BidResult{Bid: proposed, Generated: resolution.Generated, Auction: updated, Extended: extended}, nil
}

// CancelAuction moves an auction to CANCELLED and settles deposit refunds.
func (s *AuctionService) CancelAuction(auctionID, reason string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	mu := s.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: cancel auction: %w", err)
	}
	// An overdue auction completes before the cancellation is considered, so
	// a cancel that raced the close surfaces AlreadyFinalized.
	a, err = s.sweepLocked(a, now)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: cancel auction: %w", err)
	}

	cancelled, err := engine.Cancel(a, reason, now)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: cancel auction: %w", err)
	}
	if err := s.repo.UpdateAuction(cancelled, a.Version); err != nil {
		return model.Auction{}, fmt.Errorf("service: cancel auction: %w", err)
	}
	cancelled.Version = a.Version + 1

	result, err := s.settler.Settle(cancelled, now)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: cancel auction: %w", err)
	}

	s.publisher.PublishStatusChanged(cancelled)
	s.publisher.PublishSettled(result)
	utils.Info("auction cancelled", map[string]any{
		"auction_id": auctionID,
		"reason":     reason,
		"refunds":    len(result.Refunds),
	})
	return cancelled, nil
}

// GetAuctionDetail returns the admin read model for one auction, applying any
// due lifecycle transition first.
func (s *AuctionService) GetAuctionDetail(auctionID string) (AuctionDetail, error) {
	if auctionID == "" {
		return AuctionDetail{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	mu := s.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return AuctionDetail{}, fmt.Errorf("service: get auction detail: %w", err)
	}
	a, err = s.sweepLocked(a, now)
	if err != nil {
		return AuctionDetail{}, fmt.Errorf("service: get auction detail: %w", err)
	}

	bids, err := s.repo.GetBidsByAuction(auctionID)
	if err != nil {
		return AuctionDetail{}, fmt.Errorf("service: get auction detail: %w", err)
	}
	model.SortBidsForDisplay(bids)

	participants, err := s.repo.GetParticipantsByAuction(auctionID)
	if err != nil {
		return AuctionDetail{}, fmt.Errorf("service: get auction detail: %w", err)
	}

	paid := 0
	for _, p := range participants {
		if p.DepositPaid {
			paid++
		}
	}

	return AuctionDetail{
		Auction:      a,
		Bids:         bids,
		Participants: participants,
		Stats: AuctionStats{
			BidCount:         len(bids),
			ParticipantCount: len(participants),
			DepositsPaid:     paid,
		},
	}, nil
}

// ListAuctions returns auctions filtered by status with pagination. Listings
// tolerate staleness; no per-row sweep is applied.
func (s *AuctionService) ListAuctions(status string, limit, offset int) ([]model.Auction, error) {
	var filter model.AuctionStatus
	switch model.AuctionStatus(status) {
	case "", model.AuctionStatusUpcoming, model.AuctionStatusOngoing, model.AuctionStatusCompleted, model.AuctionStatusCancelled:
		filter = model.AuctionStatus(status)
	default:
		return nil, fmt.Errorf("service: %w - unknown status %q", auctionerrors.ErrInvalidAuction, status)
	}
	auctions, err := s.repo.ListAuctions(filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("service: list auctions: %w", err)
	}
	return auctions, nil
}

// GetBidsForAuction returns the ordered bid history for one auction.
func (s *AuctionService) GetBidsForAuction(auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	bids, err := s.repo.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	model.SortBidsForDisplay(bids)
	return bids, nil
}

// RecordDepositPayment consumes a verified payment-gateway confirmation.
func (s *AuctionService) RecordDepositPayment(auctionID, userID, txID string, amountConfirmed int64) (model.Participant, error) {
	if auctionID == "" || userID == "" || txID == "" {
		return model.Participant{}, fmt.Errorf("service: %w - missing payment reference", auctionerrors.ErrInvalidAuction)
	}

	mu := s.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Participant{}, fmt.Errorf("service: record deposit: %w", err)
	}
	if _, err := s.sweepLocked(a, now); err != nil {
		return model.Participant{}, fmt.Errorf("service: record deposit: %w", err)
	}

	p, err := s.ledger.RecordPayment(auctionID, userID, txID, amountConfirmed)
	if err != nil {
		return model.Participant{}, fmt.Errorf("service: record deposit: %w", err)
	}
	utils.Info("deposit recorded", map[string]any{
		"auction_id": auctionID,
		"user_id":    userID,
		"tx_id":      txID,
	})
	return p, nil
}

// GetSettlement returns the recorded settlement for a finalized auction,
// finalizing it first when its end time has passed unseen.
func (s *AuctionService) GetSettlement(auctionID string) (model.SettlementResult, error) {
	if auctionID == "" {
		return model.SettlementResult{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	mu := s.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.SettlementResult{}, fmt.Errorf("service: get settlement: %w", err)
	}
	if _, err := s.sweepLocked(a, now); err != nil {
		return model.SettlementResult{}, fmt.Errorf("service: get settlement: %w", err)
	}

	result, err := s.repo.GetSettlement(auctionID)
	if err != nil {
		return model.SettlementResult{}, fmt.Errorf("service: get settlement: %w", err)
	}
	return result, nil
}

// GetAuctionsByUser returns all auctions a user participates in.
func (s *AuctionService) GetAuctionsByUser(userID string) ([]model.Auction, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidAuction)
	}
	auctions, err := s.repo.GetAuctionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for user %s: %w", userID, err)
	}
	return auctions, nil
}

// sweepLocked applies any due lifecycle transition to the auction and, on
// completion, triggers settlement. The caller holds the auction lock.
func (s *AuctionService) sweepLocked(a model.Auction, now time.Time) (model.Auction, error) {
	advanced, changed := engine.Advance(a, now)
	if !changed {
		return a, nil
	}
	if err := s.repo.UpdateAuction(advanced, a.Version); err != nil {
		return model.Auction{}, fmt.Errorf("advance auction %s: %w", a.AuctionID, err)
	}
	advanced.Version = a.Version + 1

	s.publisher.PublishStatusChanged(advanced)
	utils.Info("auction transitioned", map[string]any{
		"auction_id": advanced.AuctionID,
		"status":     string(advanced.Status),
	})

	if advanced.Status == model.AuctionStatusCompleted {
		result, err := s.settler.Settle(advanced, now)
		if err != nil {
			return model.Auction{}, fmt.Errorf("settle auction %s: %w", advanced.AuctionID, err)
		}
		s.publisher.PublishSettled(result)
	}
	return advanced, nil
}
