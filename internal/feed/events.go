package feed

import "encoding/json"

// EventKind discriminates inbound push notifications
type EventKind string

const (
	EventAuctionAdded       EventKind = "auctionAdded"
	EventAuctionClosed      EventKind = "auctionClosed"
	EventAuctionsList       EventKind = "auctionsList"
	EventErrorAddingAuction EventKind = "erroraddingauction"

	// EmitAddAuction is the outbound submission event
	EmitAddAuction = "addAuction"
)

// Event is one inbound push notification with its raw payload. Payload
// decoding is left to the consumer so unknown kinds can be skipped
// without touching their body.
type Event struct {
	Kind    EventKind
	Payload json.RawMessage
}

// Envelope is the wire framing shared by both directions
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
