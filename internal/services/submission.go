package services

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bidfeed/bidfeed-client/internal/engine"
	"github.com/bidfeed/bidfeed-client/internal/feed"
	"github.com/bidfeed/bidfeed-client/internal/models"
)

// PipelineState tracks a submission through its lifecycle
type PipelineState string

const (
	StateIdle                 PipelineState = "idle"
	StateValidating           PipelineState = "validating"
	StateUploadingMedia       PipelineState = "uploadingMedia"
	StateAwaitingConfirmation PipelineState = "awaitingConfirmation"
	StateConfirmed            PipelineState = "confirmed"
	StateRejected             PipelineState = "rejected"
)

const (
	requiredFieldsMessage = "Title, Start Price, End Time and Image is required!"
	uploadFailedMessage   = "Failed to upload image."
	emitFailedMessage     = "Failed to submit auction."
	tokenExpiredMessage   = "Session expired, please sign in again."
)

// MediaFile is the selected media asset for a draft
type MediaFile struct {
	Content     []byte
	Filename    string
	ContentType string
}

// Draft is the in-progress, not-yet-confirmed new-auction data
type Draft struct {
	Title      string
	StartPrice float64
	LotDate    string // dd.mm.yyyy
	LotTime    string // HH:MM
	Media      *MediaFile
	ImageURL   string // set once the upload completes
}

// Uploader sends the media asset to the external host and returns its
// public resource URL.
type Uploader interface {
	Upload(ctx context.Context, content *bytes.Reader, filename, contentType string) (string, error)
}

// Emitter sends an outbound event over the push channel
type Emitter interface {
	Emit(event string, payload any) error
}

// Noticer raises user-facing transient messages
type Noticer interface {
	ShowNotice(text string, kind engine.NoticeKind)
}

// SubmissionService drives the new-auction pipeline: validate the
// draft, upload the media asset, assemble the payload, emit it, then
// wait for the server's verdict. The verdict arrives through the
// engine, which calls back Confirmed or Rejected.
type SubmissionService struct {
	uploader Uploader
	emitter  Emitter
	notices  Noticer
	creator  models.Creator
	token    string
	now      func() time.Time
	log      zerolog.Logger

	mu    sync.Mutex
	state PipelineState
	draft Draft
	gen   uint64 // bumped per attempt and reset; stale attempts may not emit
}

// NewSubmissionService creates a SubmissionService
func NewSubmissionService(uploader Uploader, emitter Emitter, notices Noticer, creator models.Creator, token string, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		uploader: uploader,
		emitter:  emitter,
		notices:  notices,
		creator:  creator,
		token:    token,
		now:      time.Now,
		log:      log,
		state:    StateIdle,
	}
}

// State returns the current pipeline state
func (s *SubmissionService) State() PipelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the current draft
func (s *SubmissionService) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Submit runs the pipeline for one draft. At most one submission may
// be in flight at a time: a second call while the first is validating,
// uploading, or awaiting confirmation fails with ErrSubmissionInFlight.
// Validation and upload failures return the draft to idle with the
// draft preserved for retry.
func (s *SubmissionService) Submit(ctx context.Context, draft Draft) error {
	s.mu.Lock()
	switch s.state {
	case StateValidating, StateUploadingMedia, StateAwaitingConfirmation:
		s.mu.Unlock()
		return ErrSubmissionInFlight
	}
	s.gen++
	gen := s.gen
	s.state = StateValidating
	s.draft = draft

	if err := validateDraft(draft); err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		s.notices.ShowNotice(requiredFieldsMessage, engine.NoticeError)
		return err
	}
	if err := CheckToken(s.token, s.now()); err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		s.notices.ShowNotice(tokenExpiredMessage, engine.NoticeError)
		return fmt.Errorf("token check: %w", err)
	}

	s.state = StateUploadingMedia
	media := *draft.Media
	s.mu.Unlock()

	imageURL, err := s.uploader.Upload(ctx, bytes.NewReader(media.Content), media.Filename, media.ContentType)
	if err != nil {
		s.mu.Lock()
		if s.gen == gen {
			s.state = StateIdle
		}
		s.mu.Unlock()
		s.notices.ShowNotice(uploadFailedMessage, engine.NoticeError)
		s.log.Error().Err(err).Str("filename", media.Filename).Msg("media upload failed")
		return &UploadError{Err: err}
	}

	endTime, terr := CombineEndTime(draft.LotDate, draft.LotTime, s.now())
	if terr != nil {
		// Documented degradation: an unparseable end time falls back
		// to the current timestamp and the submission proceeds.
		s.log.Warn().Str("lot_date", draft.LotDate).Str("lot_time", draft.LotTime).
			Msg("end time unparseable, falling back to current timestamp")
	}

	payload := models.AddAuctionRequest{
		AuctionData: models.AuctionData{
			Title:      draft.Title,
			StartPrice: draft.StartPrice,
			EndTime:    endTime.UTC().Format(time.RFC3339),
			ImageURL:   imageURL,
			Creator:    s.creator,
		},
		Token: s.token,
	}

	s.mu.Lock()
	// The mutex was released during the upload. Emitting is only legal
	// when this attempt is still the current one; a reset that happened
	// meanwhile invalidates it.
	if s.gen != gen || s.state != StateUploadingMedia {
		s.mu.Unlock()
		return ErrSubmissionInFlight
	}
	s.draft.ImageURL = imageURL
	if err := s.emitter.Emit(feed.EmitAddAuction, payload); err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		s.notices.ShowNotice(emitFailedMessage, engine.NoticeError)
		return fmt.Errorf("emit submission: %w", err)
	}
	s.state = StateAwaitingConfirmation
	s.mu.Unlock()

	s.log.Info().Str("title", draft.Title).Str("image_url", imageURL).Msg("submission emitted, awaiting confirmation")
	return nil
}

// Confirmed is called by the engine when the server accepts the
// submission.
func (s *SubmissionService) Confirmed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAwaitingConfirmation {
		s.state = StateConfirmed
	}
}

// Rejected is called by the engine when the server declines the
// submission. The draft stays in place so the user can retry.
func (s *SubmissionService) Rejected(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAwaitingConfirmation {
		s.state = StateRejected
	}
	s.log.Info().Str("reason", message).Msg("submission rejected")
}

// Reset clears the draft and returns the pipeline to idle. The engine
// calls it once the success notice is dismissed; handlers may call it
// for an explicit user reset.
func (s *SubmissionService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.draft = Draft{}
	s.state = StateIdle
}

func validateDraft(d Draft) error {
	if d.Title == "" || d.StartPrice <= 0 || d.LotDate == "" || d.LotTime == "" || d.Media == nil {
		return &ValidationError{Message: requiredFieldsMessage}
	}
	return nil
}
