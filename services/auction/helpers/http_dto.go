package helpers

import "time"

// Request/Response DTOs
type CreateAuctionRequest struct {
	PropertyID    string    `json:"property_id" binding:"required"`
	Title         string    `json:"title" binding:"required"`
	StartPrice    int64     `json:"start_price" binding:"required,gt=0"`
	BidStep       int64     `json:"bid_step" binding:"required,gt=0"`
	DepositAmount int64     `json:"deposit_amount" binding:"required,gt=0"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
}

type PlaceBidRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	IsAutoBid bool   `json:"is_auto_bid"`
	MaxAmount *int64 `json:"max_amount" binding:"omitempty,gt=0"`
}

type CancelAuctionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type DepositWebhookRequest struct {
	AuctionID       string `json:"auction_id" binding:"required"`
	UserID          string `json:"user_id" binding:"required"`
	TxID            string `json:"tx_id" binding:"required"`
	AmountConfirmed int64  `json:"amount_confirmed" binding:"required,gt=0"`
}

type ListAuctionsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=UPCOMING ONGOING COMPLETED CANCELLED"`
	Limit  int    `form:"limit,default=20" binding:"gte=0,lte=100"`
	Offset int    `form:"offset,default=0" binding:"gte=0"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`
	IsAutoBid bool   `json:"is_auto_bid"`
	MaxAmount *int64 `json:"max_amount,omitempty"`
	CreatedAt string `json:"created_at"`
}
