package engine

import (
	"context"
	"encoding/json"

	"github.com/bidfeed/bidfeed-client/internal/feed"
	"github.com/bidfeed/bidfeed-client/internal/models"
)

// ingest dispatches one inbound notification. It runs on the loop
// goroutine, so every handler completes before the next event is seen.
func (e *Engine) ingest(ev feed.Event) {
	switch ev.Kind {
	case feed.EventAuctionAdded:
		e.handleAuctionAdded(ev.Payload)
	case feed.EventAuctionsList:
		e.handleAuctionsList(ev.Payload)
	case feed.EventAuctionClosed:
		e.handleAuctionClosed(ev.Payload)
	case feed.EventErrorAddingAuction:
		e.handleSubmissionError(ev.Payload)
	default:
		e.log.Debug().Str("kind", string(ev.Kind)).Msg("ignoring unknown notification")
	}
}

func (e *Engine) handleAuctionAdded(raw json.RawMessage) {
	var payload models.AuctionAddedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		e.log.Warn().Err(err).Msg("malformed auctionAdded payload")
		return
	}
	if _, known := e.records[payload.Record.ID]; !known {
		e.order = append(e.order, payload.Record.ID)
	}
	e.records[payload.Record.ID] = payload.Record

	e.showNotice(payload.Message, NoticeSuccess, func() {
		if e.observer != nil {
			e.observer.Reset()
		}
		if e.navigate != nil {
			e.navigate("/auctions")
		}
	})
	if e.observer != nil {
		e.observer.Confirmed()
	}
	e.log.Info().Str("auction_id", payload.Record.ID).Str("title", payload.Record.Title).Msg("auction added")
}

// handleAuctionsList replaces the whole canonical store. The swap
// happens in one step on the loop goroutine, so readers never see a
// half-replaced list.
func (e *Engine) handleAuctionsList(raw json.RawMessage) {
	var list []models.AuctionRecord
	if err := json.Unmarshal(raw, &list); err != nil {
		e.log.Warn().Err(err).Msg("malformed auctionsList payload")
		return
	}
	records := make(map[string]models.AuctionRecord, len(list))
	order := make([]string, 0, len(list))
	for _, rec := range list {
		if _, dup := records[rec.ID]; !dup {
			order = append(order, rec.ID)
		}
		records[rec.ID] = rec
	}
	e.records = records
	e.order = order
	e.log.Info().Int("count", len(order)).Msg("auction list replaced")

	if e.snapshots != nil {
		if err := e.snapshots.Replace(context.Background(), e.orderedRecords()); err != nil {
			e.log.Error().Err(err).Msg("snapshot persist failed")
		}
	}
}

func (e *Engine) handleAuctionClosed(raw json.RawMessage) {
	var payload models.AuctionClosedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		e.log.Warn().Err(err).Msg("malformed auctionClosed payload")
		return
	}
	if rec, ok := e.records[payload.AuctionID]; ok {
		rec.Close(payload.Winner)
		rec.UpdatedAt = e.now()
		e.records[payload.AuctionID] = rec
	} else {
		e.log.Info().Str("auction_id", payload.AuctionID).Msg("closure for unknown auction")
	}
	// Presented even when the record is unknown locally; a closure is
	// never dropped silently.
	e.presentClosure(payload.AuctionID, payload.Winner)
}

func (e *Engine) handleSubmissionError(raw json.RawMessage) {
	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		e.log.Warn().Err(err).Msg("malformed erroraddingauction payload")
		return
	}
	e.showNotice(message, NoticeError, nil)
	if e.observer != nil {
		e.observer.Rejected(message)
	}
	e.log.Info().Str("reason", message).Msg("submission rejected by server")
}
