package engine

import (
	"math"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/utils"
)

// Mandate is a standing auto-bid instruction derived from the newest bid of
// one user: bid on my behalf up to Max whenever I am outbid. Seq is the
// position of that bid in the chronological history; the lower Seq wins when
// two ceilings are equal.
type Mandate struct {
	UserID string
	Max    int64
	Seq    int64
}

// Resolution is the outcome of resolving an accepted bid against the standing
// auto-bid mandates.
type Resolution struct {
	NewPrice    int64
	NewLeaderID string
	Generated   []model.Bid
}

// StandingMandates derives the active mandates from a chronological bid
// history: for each user, the most recent bid, when it is an auto-bid whose
// ceiling still exceeds the current price. A newer bid of any kind supersedes
// the user's earlier mandate.
func StandingMandates(bids []model.Bid, currentPrice int64, excludeUserID string) []Mandate {
	latest := make(map[string]int)
	for i, b := range bids {
		latest[b.UserID] = i
	}

	out := make([]Mandate, 0, len(latest))
	for userID, i := range latest {
		if userID == excludeUserID {
			continue
		}
		b := bids[i]
		if b.IsAutoBid && b.MaxAmount != nil && *b.MaxAmount > currentPrice {
			out = append(out, Mandate{UserID: userID, Max: *b.MaxAmount, Seq: int64(i)})
		}
	}
	return out
}

// ResolveAutoBids computes the visible price movement caused by an accepted
// incoming bid, using English-auction proxy rules against the standing
// mandates of other users.
//
// Processing flow per round, against the strongest opposing mandate M that can
// still beat the price:
//  1. If M's ceiling beats the incumbent's (ties go to the earlier mandate),
//     M takes the lead one step above the incumbent's ceiling, capped at
//     M's own ceiling.
//  2. Otherwise M pushes the price to its exact ceiling and the incumbent
//     answers one step above, capped at the incumbent's ceiling; on equal
//     ceilings the price rests there and the earlier mandate keeps the lead.
//
// Every round permanently exhausts one mandate, so the loop is bounded by the
// number of standing mandates. Generated bids are ordinary rows with
// IsAutoBid set, preserving the audit trail of why the price moved. A
// synthetic bid may land off the increment grid when a ceiling does: proxy
// bids pay their authorized maximum exactly.
func ResolveAutoBids(a model.Auction, incoming model.Bid, standing []Mandate, now time.Time) Resolution {
	price := incoming.Amount
	leader := Mandate{UserID: incoming.UserID, Max: incoming.Amount, Seq: math.MaxInt64}
	if incoming.IsAutoBid && incoming.MaxAmount != nil {
		leader.Max = *incoming.MaxAmount
	}

	active := make([]Mandate, 0, len(standing))
	for _, m := range standing {
		if m.UserID != incoming.UserID {
			active = append(active, m)
		}
	}

	var generated []model.Bid
	ts := now
	emit := func(userID string, amount, max int64) {
		ts = ts.Add(time.Millisecond)
		ceiling := max
		generated = append(generated, model.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: a.AuctionID,
			UserID:    userID,
			Amount:    amount,
			IsAutoBid: true,
			MaxAmount: &ceiling,
			CreatedAt: ts,
		})
	}

	for range standing {
		idx := strongestOpponent(active, leader.UserID, price)
		if idx < 0 {
			break
		}
		m := active[idx]
		active = append(active[:idx], active[idx+1:]...)

		if m.Max > leader.Max || (m.Max == leader.Max && m.Seq < leader.Seq) {
			// m wins the exchange and takes the lead.
			amount := minInt64(m.Max, leader.Max+a.BidStep)
			if amount <= price {
				amount = minInt64(price+a.BidStep, m.Max)
			}
			emit(m.UserID, amount, m.Max)
			price = amount
			leader = m
			continue
		}

		// The incumbent holds: m pushes to its ceiling, the incumbent answers.
		emit(m.UserID, m.Max, m.Max)
		price = m.Max
		if leader.Max > m.Max {
			amount := minInt64(leader.Max, m.Max+a.BidStep)
			emit(leader.UserID, amount, leader.Max)
			price = amount
		}
	}

	return Resolution{NewPrice: price, NewLeaderID: leader.UserID, Generated: generated}
}

// strongestOpponent returns the index of the mandate best placed to challenge
// the leader: highest ceiling above the price, ties to the earlier mandate.
func strongestOpponent(active []Mandate, leaderID string, price int64) int {
	best := -1
	for i, m := range active {
		if m.UserID == leaderID || m.Max <= price {
			continue
		}
		if best < 0 || m.Max > active[best].Max || (m.Max == active[best].Max && m.Seq < active[best].Seq) {
			best = i
		}
	}
	return best
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
