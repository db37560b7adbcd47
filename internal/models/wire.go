package models

// AuctionAddedPayload is pushed by the server after it accepts a new
// auction, both to the submitter and to every connected client.
type AuctionAddedPayload struct {
	Message string        `json:"message"`
	Record  AuctionRecord `json:"record"`
}

// AuctionClosedPayload is pushed when an auction ends. Winner is
// absent when the auction closed without bids.
type AuctionClosedPayload struct {
	AuctionID string  `json:"auctionId"`
	Winner    *Winner `json:"winner,omitempty"`
}

// AuctionData is the payload of an outbound addAuction submission
type AuctionData struct {
	Title      string  `json:"title"`
	StartPrice float64 `json:"startPrice"`
	EndTime    string  `json:"endTime"` // ISO-8601
	ImageURL   string  `json:"imageUrl"`
	Creator    Creator `json:"creator"`
}

// AddAuctionRequest wraps the submission payload with the caller's
// auth token
type AddAuctionRequest struct {
	AuctionData AuctionData `json:"auctionData"`
	Token       string      `json:"token"`
}
