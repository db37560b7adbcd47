package engine

import (
	"time"

	"github.com/bidfeed/bidfeed-client/internal/models"
)

// NoticeKind tags a transient notice for presentation
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// TransientNotice is the single-slot auto-dismissing user message
type TransientNotice struct {
	Text     string     `json:"text"`
	Kind     NoticeKind `json:"kind"`
	Deadline time.Time  `json:"deadline"`
}

// showNotice replaces any pending notice and restarts its dismiss
// deadline. onDismiss fires only if this notice reaches its deadline;
// a superseding notice or an explicit dismissal drops it.
func (e *Engine) showNotice(text string, kind NoticeKind, onDismiss func()) {
	e.noticeSeq++
	seq := e.noticeSeq
	e.notice = &TransientNotice{
		Text:     text,
		Kind:     kind,
		Deadline: e.now().Add(e.dismissAfter),
	}
	e.noticeDismiss = onDismiss
	time.AfterFunc(e.dismissAfter, func() {
		e.submit(func() { e.expireNotice(seq) })
	})
}

func (e *Engine) expireNotice(seq int) {
	if seq != e.noticeSeq || e.notice == nil {
		return
	}
	fire := e.noticeDismiss
	e.notice = nil
	e.noticeDismiss = nil
	if fire != nil {
		fire()
	}
}

func (e *Engine) clearNotice() {
	e.noticeSeq++
	e.notice = nil
	e.noticeDismiss = nil
}

// presentClosure builds the transient closure presentation from the
// best data available: the local record merged with the notified
// winner, or the notification alone when the record is unknown.
func (e *Engine) presentClosure(auctionID string, winner *models.Winner) {
	if rec, ok := e.records[auctionID]; ok {
		shown := rec
		shown.Close(winner)
		e.closure = &shown
		return
	}
	shown := models.AuctionRecord{ID: auctionID, Status: models.AuctionStatusEnded, Winner: winner}
	e.closure = &shown
}
