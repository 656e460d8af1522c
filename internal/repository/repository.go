package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// AuctionDB defines the storage interface for the auction engine.
//
// Auction mutations take the caller's expected version and fail with
// ErrVersionConflict when the stored row has moved on; callers serialize
// writes per auction and use the version as a second guard against lost
// updates.
type AuctionDB interface {
	CreateAuction(a model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	UpdateAuction(a model.Auction, expectedVersion int64) error
	AppendBids(a model.Auction, expectedVersion int64, bids []model.Bid) error
	ListAuctions(status model.AuctionStatus, limit, offset int) ([]model.Auction, error)
	ListAuctionsDue(now time.Time) ([]model.Auction, error)

	GetBidsByAuction(auctionID string) ([]model.Bid, error)

	CreateParticipant(p model.Participant) error
	GetParticipant(auctionID, userID string) (model.Participant, error)
	GetParticipantByID(participantID string) (model.Participant, error)
	GetParticipantsByAuction(auctionID string) ([]model.Participant, error)
	UpdateParticipant(p model.Participant) error
	GetAuctionsByUser(userID string) ([]model.Auction, error)

	SaveSettlement(r model.SettlementResult) error
	GetSettlement(auctionID string) (model.SettlementResult, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// Bids are kept in insertion order; display ordering is the caller's concern.
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[string]model.Auction          // key: auctionID
	bids         map[string][]model.Bid            // key: auctionID -> bids in insertion order
	participants map[string]model.Participant      // key: participantID
	byAuction    map[string][]string               // key: auctionID -> participantIDs
	byUser       map[string][]string               // key: userID -> auctionIDs participated in
	settlements  map[string]model.SettlementResult // key: auctionID
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:     make(map[string]model.Auction),
		bids:         make(map[string][]model.Bid),
		participants: make(map[string]model.Participant),
		byAuction:    make(map[string][]string),
		byUser:       make(map[string][]string),
		settlements:  make(map[string]model.SettlementResult),
	}
}

// CreateAuction stores a new auction row.
func (r *MemoryRepo) CreateAuction(a model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[a.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", a.AuctionID, auctionerrors.ErrDuplicateAuction)
	}
	r.auctions[a.AuctionID] = a
	return nil
}

// GetAuction returns one auction by ID.
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// UpdateAuction replaces an auction row if the stored version matches.
func (r *MemoryRepo) UpdateAuction(a model.Auction, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateAuctionLocked(a, expectedVersion)
}

func (r *MemoryRepo) updateAuctionLocked(a model.Auction, expectedVersion int64) error {
	stored, ok := r.auctions[a.AuctionID]
	if !ok {
		return fmt.Errorf("update auction %s: %w", a.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("update auction %s: expected version %d, have %d: %w",
			a.AuctionID, expectedVersion, stored.Version, auctionerrors.ErrVersionConflict)
	}
	a.Version = expectedVersion + 1
	r.auctions[a.AuctionID] = a
	return nil
}

// AppendBids atomically appends accepted bid rows and applies the updated
// auction state (price, leader, end time) in one critical section.
func (r *MemoryRepo) AppendBids(a model.Auction, expectedVersion int64, bids []model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.updateAuctionLocked(a, expectedVersion); err != nil {
		return fmt.Errorf("append bids: %w", err)
	}
	r.bids[a.AuctionID] = append(r.bids[a.AuctionID], bids...)
	return nil
}

// ListAuctions returns auctions filtered by status (empty matches all),
// newest first, with limit/offset pagination.
func (r *MemoryRepo) ListAuctions(status model.AuctionStatus, limit, offset int) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].AuctionID < out[j].AuctionID
	})

	if offset >= len(out) {
		return []model.Auction{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return append([]model.Auction(nil), out...), nil
}

// ListAuctionsDue returns non-terminal auctions whose next automatic
// transition time has passed: UPCOMING past startTime or ONGOING past endTime.
func (r *MemoryRepo) ListAuctionsDue(now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []model.Auction
	for _, a := range r.auctions {
		switch a.Status {
		case model.AuctionStatusUpcoming:
			if !now.Before(a.StartTime) {
				due = append(due, a)
			}
		case model.AuctionStatusOngoing:
			if !now.Before(a.EndTime) {
				due = append(due, a)
			}
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].AuctionID < due[j].AuctionID })
	return due, nil
}

// GetBidsByAuction returns all bids for an auction in insertion order.
func (r *MemoryRepo) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return append([]model.Bid(nil), r.bids[auctionID]...), nil
}

// CreateParticipant stores a new participant row.
func (r *MemoryRepo) CreateParticipant(p model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[p.AuctionID]; !ok {
		return fmt.Errorf("create participant for auction %s: %w", p.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if _, ok := r.participants[p.ParticipantID]; ok {
		return fmt.Errorf("create participant %s: %w", p.ParticipantID, auctionerrors.ErrDuplicateParticipant)
	}
	for _, id := range r.byAuction[p.AuctionID] {
		if r.participants[id].UserID == p.UserID {
			return fmt.Errorf("create participant for user %s: %w", p.UserID, auctionerrors.ErrDuplicateParticipant)
		}
	}

	r.participants[p.ParticipantID] = p
	r.byAuction[p.AuctionID] = append(r.byAuction[p.AuctionID], p.ParticipantID)
	r.byUser[p.UserID] = append(r.byUser[p.UserID], p.AuctionID)
	return nil
}

// GetParticipant returns the participant row for a user on an auction.
func (r *MemoryRepo) GetParticipant(auctionID, userID string) (model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.byAuction[auctionID] {
		if p := r.participants[id]; p.UserID == userID {
			return p, nil
		}
	}
	return model.Participant{}, fmt.Errorf("get participant for user %s on auction %s: %w",
		userID, auctionID, auctionerrors.ErrParticipantNotFound)
}

// GetParticipantByID returns one participant by its own ID.
func (r *MemoryRepo) GetParticipantByID(participantID string) (model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[participantID]
	if !ok {
		return model.Participant{}, fmt.Errorf("get participant %s: %w", participantID, auctionerrors.ErrParticipantNotFound)
	}
	return p, nil
}

// GetParticipantsByAuction returns all participants of an auction.
func (r *MemoryRepo) GetParticipantsByAuction(auctionID string) ([]model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get participants for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	ids := r.byAuction[auctionID]
	out := make([]model.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.participants[id])
	}
	return out, nil
}

// UpdateParticipant replaces a participant row.
func (r *MemoryRepo) UpdateParticipant(p model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[p.ParticipantID]; !ok {
		return fmt.Errorf("update participant %s: %w", p.ParticipantID, auctionerrors.ErrParticipantNotFound)
	}
	r.participants[p.ParticipantID] = p
	return nil
}

// GetAuctionsByUser returns all auctions a user participates in.
func (r *MemoryRepo) GetAuctionsByUser(userID string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	out := make([]model.Auction, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.auctions[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// SaveSettlement records the settlement result for an auction once.
func (r *MemoryRepo) SaveSettlement(res model.SettlementResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[res.AuctionID]; !ok {
		return fmt.Errorf("save settlement for auction %s: %w", res.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	r.settlements[res.AuctionID] = res
	return nil
}

// GetSettlement returns the recorded settlement result for an auction.
func (r *MemoryRepo) GetSettlement(auctionID string) (model.SettlementResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.settlements[auctionID]
	if !ok {
		return model.SettlementResult{}, fmt.Errorf("get settlement for auction %s: %w", auctionID, auctionerrors.ErrSettlementNotFound)
	}
	return res, nil
}
