package models

import (
	"time"
)

// AuctionStatus represents the lifecycle status of an auction
type AuctionStatus string

const (
	AuctionStatusPending AuctionStatus = "pending"
	AuctionStatusActive  AuctionStatus = "active"
	AuctionStatusEnded   AuctionStatus = "ended"
)

// Creator identifies the user that opened an auction
type Creator struct {
	ID       string `json:"_id,omitempty" db:"creator_id"`
	UserName string `json:"userName" db:"creator_name"`
}

// Winner holds the winning bidder and the amount of the winning bid.
// It is set only on records whose status is ended.
type Winner struct {
	User   string  `json:"user"`
	Amount float64 `json:"amount"`
}

// AuctionRecord represents one auction as pushed by the server
type AuctionRecord struct {
	ID         string        `json:"_id" db:"id"`
	Title      string        `json:"title" db:"title"`
	StartPrice float64       `json:"startPrice" db:"start_price"`
	EndTime    time.Time     `json:"endTime" db:"end_time"`
	ImageURL   string        `json:"imageUrl" db:"image_url"`
	Status     AuctionStatus `json:"status" db:"status"`
	Creator    Creator       `json:"creator"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time     `json:"updatedAt" db:"updated_at"`
	CurrentBid *float64      `json:"currentBid,omitempty" db:"current_bid"`
	Winner     *Winner       `json:"winner,omitempty"`
}

// Close marks the record ended. Passing a nil winner keeps any winner
// already present, so a bare closure notification does not erase data.
func (a *AuctionRecord) Close(winner *Winner) {
	a.Status = AuctionStatusEnded
	if winner != nil {
		a.Winner = winner
	}
}

// IsActive reports whether the auction is still open for bidding at
// the given instant.
func (a AuctionRecord) IsActive(now time.Time) bool {
	return a.Status == AuctionStatusActive && a.EndTime.After(now)
}
