package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bidfeed/bidfeed-client/internal/engine"
	"github.com/bidfeed/bidfeed-client/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (u *fakeUploader) Upload(_ context.Context, _ *bytes.Reader, _, _ string) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type fakeEmitter struct {
	events   []string
	payloads []any
	err      error
}

func (e *fakeEmitter) Emit(event string, payload any) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	e.payloads = append(e.payloads, payload)
	return nil
}

type fakeNoticer struct {
	texts []string
	kinds []engine.NoticeKind
}

func (n *fakeNoticer) ShowNotice(text string, kind engine.NoticeKind) {
	n.texts = append(n.texts, text)
	n.kinds = append(n.kinds, kind)
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(testNow.Add(-time.Hour)),
		Subject:   "user-1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func newTestService(t *testing.T, uploader *fakeUploader, emitter *fakeEmitter, notices *fakeNoticer) *SubmissionService {
	t.Helper()
	creator := models.Creator{ID: "user-1", UserName: "alice"}
	svc := NewSubmissionService(uploader, emitter, notices, creator, signedToken(t, testNow.Add(time.Hour)), zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func validDraft() Draft {
	return Draft{
		Title:      "Antique clock",
		StartPrice: 50,
		LotDate:    "15.07.2025",
		LotTime:    "18:30",
		Media:      &MediaFile{Content: []byte("img"), Filename: "clock.jpg", ContentType: "image/jpeg"},
	}
}

func TestSubmitMissingFieldsBlocksBeforeUpload(t *testing.T) {
	uploader := &fakeUploader{url: "https://media/x.jpg"}
	emitter := &fakeEmitter{}
	notices := &fakeNoticer{}
	svc := newTestService(t, uploader, emitter, notices)

	draft := validDraft()
	draft.StartPrice = 0
	err := svc.Submit(context.Background(), draft)

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if uploader.calls != 0 {
		t.Fatalf("no upload call may happen on validation failure")
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no emit may happen on validation failure")
	}
	if len(notices.texts) != 1 || notices.texts[0] != requiredFieldsMessage {
		t.Fatalf("expected required-fields notice, got %v", notices.texts)
	}
	if svc.State() != StateIdle {
		t.Fatalf("expected return to idle, got %s", svc.State())
	}
}

func TestSubmitUploadFailureAbortsAndPreservesDraft(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("host unreachable")}
	emitter := &fakeEmitter{}
	notices := &fakeNoticer{}
	svc := newTestService(t, uploader, emitter, notices)

	err := svc.Submit(context.Background(), validDraft())

	var upload *UploadError
	if !errors.As(err, &upload) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("aborted submission must not be emitted")
	}
	if len(notices.texts) != 1 || notices.texts[0] != uploadFailedMessage {
		t.Fatalf("expected upload failure notice, got %v", notices.texts)
	}
	if svc.State() != StateIdle {
		t.Fatalf("expected return to idle, got %s", svc.State())
	}
	if svc.Draft().Title != "Antique clock" {
		t.Fatalf("draft must be preserved for retry")
	}
}

func TestSubmitEmitsAssembledPayload(t *testing.T) {
	uploader := &fakeUploader{url: "https://media/auctions/clock.jpg"}
	emitter := &fakeEmitter{}
	notices := &fakeNoticer{}
	svc := newTestService(t, uploader, emitter, notices)

	if err := svc.Submit(context.Background(), validDraft()); err != nil {
		t.Fatal(err)
	}

	if svc.State() != StateAwaitingConfirmation {
		t.Fatalf("expected awaitingConfirmation, got %s", svc.State())
	}
	if len(emitter.events) != 1 || emitter.events[0] != "addAuction" {
		t.Fatalf("expected one addAuction emit, got %v", emitter.events)
	}

	req, ok := emitter.payloads[0].(models.AddAuctionRequest)
	if !ok {
		t.Fatalf("unexpected payload type %T", emitter.payloads[0])
	}
	if req.AuctionData.Title != "Antique clock" || req.AuctionData.StartPrice != 50 {
		t.Fatalf("payload fields wrong: %+v", req.AuctionData)
	}
	if req.AuctionData.ImageURL != "https://media/auctions/clock.jpg" {
		t.Fatalf("expected uploaded image url, got %s", req.AuctionData.ImageURL)
	}
	if req.AuctionData.Creator.UserName != "alice" {
		t.Fatalf("creator missing from payload: %+v", req.AuctionData.Creator)
	}
	if req.Token == "" {
		t.Fatalf("auth token missing from payload")
	}

	want := time.Date(2025, 7, 15, 18, 30, 0, 0, time.Local).UTC().Format(time.RFC3339)
	if req.AuctionData.EndTime != want {
		t.Fatalf("end time = %s, want %s", req.AuctionData.EndTime, want)
	}
}

func TestSubmitMalformedEndTimeFallsBackAndProceeds(t *testing.T) {
	uploader := &fakeUploader{url: "https://media/x.jpg"}
	emitter := &fakeEmitter{}
	notices := &fakeNoticer{}
	svc := newTestService(t, uploader, emitter, notices)

	draft := validDraft()
	draft.LotDate = "32.13.2024"
	if err := svc.Submit(context.Background(), draft); err != nil {
		t.Fatalf("malformed end time must not abort the submission: %v", err)
	}

	req := emitter.payloads[0].(models.AddAuctionRequest)
	if req.AuctionData.EndTime != testNow.UTC().Format(time.RFC3339) {
		t.Fatalf("expected fallback to current timestamp, got %s", req.AuctionData.EndTime)
	}
	if svc.State() != StateAwaitingConfirmation {
		t.Fatalf("submission should still be in flight, got %s", svc.State())
	}
}

func TestSubmitAtMostOneInFlight(t *testing.T) {
	uploader := &fakeUploader{url: "https://media/x.jpg"}
	emitter := &fakeEmitter{}
	svc := newTestService(t, uploader, emitter, &fakeNoticer{})

	if err := svc.Submit(context.Background(), validDraft()); err != nil {
		t.Fatal(err)
	}
	if err := svc.Submit(context.Background(), validDraft()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if uploader.calls != 1 {
		t.Fatalf("second submission must not reach the uploader")
	}
}

func TestConfirmedThenResetClearsDraft(t *testing.T) {
	svc := newTestService(t, &fakeUploader{url: "u"}, &fakeEmitter{}, &fakeNoticer{})

	if err := svc.Submit(context.Background(), validDraft()); err != nil {
		t.Fatal(err)
	}
	svc.Confirmed()
	if svc.State() != StateConfirmed {
		t.Fatalf("expected confirmed, got %s", svc.State())
	}
	svc.Reset()
	if svc.State() != StateIdle || svc.Draft().Title != "" {
		t.Fatalf("reset must clear the draft and return to idle")
	}
}

func TestRejectedPreservesDraftForRetry(t *testing.T) {
	uploader := &fakeUploader{url: "u"}
	svc := newTestService(t, uploader, &fakeEmitter{}, &fakeNoticer{})

	if err := svc.Submit(context.Background(), validDraft()); err != nil {
		t.Fatal(err)
	}
	svc.Rejected("duplicate title")
	if svc.State() != StateRejected {
		t.Fatalf("expected rejected, got %s", svc.State())
	}
	if svc.Draft().Title != "Antique clock" {
		t.Fatalf("rejection must preserve the draft")
	}

	// The user can retry immediately.
	if err := svc.Submit(context.Background(), validDraft()); err != nil {
		t.Fatalf("retry after rejection should be allowed: %v", err)
	}
	if uploader.calls != 2 {
		t.Fatalf("expected a second upload on retry, got %d", uploader.calls)
	}
}

func TestSubmitExpiredTokenRefused(t *testing.T) {
	uploader := &fakeUploader{url: "u"}
	notices := &fakeNoticer{}
	creator := models.Creator{ID: "user-1", UserName: "alice"}
	svc := NewSubmissionService(uploader, &fakeEmitter{}, notices, creator, signedToken(t, testNow.Add(-time.Minute)), zerolog.Nop())
	svc.now = func() time.Time { return testNow }

	err := svc.Submit(context.Background(), validDraft())
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if uploader.calls != 0 {
		t.Fatalf("expired token must block before the upload")
	}
	if len(notices.texts) != 1 || notices.texts[0] != tokenExpiredMessage {
		t.Fatalf("expected expiry notice, got %v", notices.texts)
	}
}

type blockingUploader struct {
	url     string
	entered chan struct{}
	release chan struct{}
}

func (u *blockingUploader) Upload(_ context.Context, _ *bytes.Reader, _, _ string) (string, error) {
	u.entered <- struct{}{}
	<-u.release
	return u.url, nil
}

func TestSubmitRefusedWhileUploadInFlight(t *testing.T) {
	uploader := &blockingUploader{
		url:     "https://media/x.jpg",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	emitter := &fakeEmitter{}
	creator := models.Creator{ID: "user-1", UserName: "alice"}
	svc := NewSubmissionService(uploader, emitter, &fakeNoticer{}, creator, signedToken(t, testNow.Add(time.Hour)), zerolog.Nop())
	svc.now = func() time.Time { return testNow }

	done := make(chan error, 1)
	go func() { done <- svc.Submit(context.Background(), validDraft()) }()
	<-uploader.entered

	// The first submission is suspended in its upload; a second one
	// must be refused before it can touch the draft or the uploader.
	second := validDraft()
	second.Title = "Interloper"
	if err := svc.Submit(context.Background(), second); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight during upload, got %v", err)
	}

	close(uploader.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission should complete: %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected exactly one emit, got %d", len(emitter.events))
	}
	if svc.State() != StateAwaitingConfirmation {
		t.Fatalf("expected awaitingConfirmation, got %s", svc.State())
	}
	if svc.Draft().Title != "Antique clock" {
		t.Fatalf("refused submission clobbered the draft: %q", svc.Draft().Title)
	}
}

func TestResetDuringUploadSuppressesEmit(t *testing.T) {
	uploader := &blockingUploader{
		url:     "https://media/x.jpg",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	emitter := &fakeEmitter{}
	creator := models.Creator{ID: "user-1", UserName: "alice"}
	svc := NewSubmissionService(uploader, emitter, &fakeNoticer{}, creator, signedToken(t, testNow.Add(time.Hour)), zerolog.Nop())
	svc.now = func() time.Time { return testNow }

	done := make(chan error, 1)
	go func() { done <- svc.Submit(context.Background(), validDraft()) }()
	<-uploader.entered

	svc.Reset()
	close(uploader.release)

	if err := <-done; !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("stale attempt must not emit, got %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("reset mid-upload must suppress the emit, got %v", emitter.events)
	}
	if svc.State() != StateIdle || svc.Draft().Title != "" {
		t.Fatalf("expected idle with a cleared draft, got %s %q", svc.State(), svc.Draft().Title)
	}
}
