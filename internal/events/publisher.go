package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	model "auction-engine/internal/models"
	"auction-engine/utils"
)

// Channel names consumed by broadcast/notification collaborators.
const (
	ChannelBid     = "auction.bid"
	ChannelStatus  = "auction.status"
	ChannelSettled = "auction.settled"
)

// Publisher fans out auction events to external consumers. Publishing is
// fire-and-forget: failures are logged and never block the bidding or
// settlement path.
type Publisher interface {
	PublishBidAccepted(auction model.Auction, bid model.Bid, generated []model.Bid)
	PublishStatusChanged(auction model.Auction)
	PublishSettled(result model.SettlementResult)
}

// BidEvent is the payload published on ChannelBid.
type BidEvent struct {
	AuctionID    string      `json:"auction_id"`
	Bid          model.Bid   `json:"bid"`
	Generated    []model.Bid `json:"generated,omitempty"`
	CurrentPrice int64       `json:"current_price"`
	LeaderID     string      `json:"leader_id"`
	EndTime      time.Time   `json:"end_time"`
}

// StatusEvent is the payload published on ChannelStatus.
type StatusEvent struct {
	AuctionID    string              `json:"auction_id"`
	Status       model.AuctionStatus `json:"status"`
	WinnerID     *string             `json:"winner_id,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
}

// RedisPublisher publishes events over Redis pub/sub for downstream
// broadcast services.
type RedisPublisher struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisPublisher connects a publisher to the given Redis address.
func NewRedisPublisher(addr string) *RedisPublisher {
	return &RedisPublisher{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		timeout: 2 * time.Second,
	}
}

func (p *RedisPublisher) publish(channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		utils.Error("events: marshal payload", map[string]any{"channel": channel, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		utils.Warn("events: publish failed", map[string]any{"channel": channel, "error": err.Error()})
	}
}

// PublishBidAccepted announces an accepted bid and the price movement it caused.
func (p *RedisPublisher) PublishBidAccepted(a model.Auction, bid model.Bid, generated []model.Bid) {
	p.publish(ChannelBid, BidEvent{
		AuctionID:    a.AuctionID,
		Bid:          bid,
		Generated:    generated,
		CurrentPrice: a.CurrentPrice,
		LeaderID:     a.LeaderID,
		EndTime:      a.EndTime,
	})
}

// PublishStatusChanged announces a lifecycle transition.
func (p *RedisPublisher) PublishStatusChanged(a model.Auction) {
	p.publish(ChannelStatus, StatusEvent{
		AuctionID:    a.AuctionID,
		Status:       a.Status,
		WinnerID:     a.WinnerID,
		CancelReason: a.CancelReason,
	})
}

// PublishSettled announces a recorded settlement.
func (p *RedisPublisher) PublishSettled(result model.SettlementResult) {
	p.publish(ChannelSettled, result)
}

// Close releases the underlying Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NoopPublisher satisfies Publisher when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBidAccepted(model.Auction, model.Bid, []model.Bid) {}
func (NoopPublisher) PublishStatusChanged(model.Auction)                       {}
func (NoopPublisher) PublishSettled(model.SettlementResult)                    {}
