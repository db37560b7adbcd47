package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bidfeed/bidfeed-client/internal/engine"
	"github.com/bidfeed/bidfeed-client/internal/services"
)

const maxUploadBytes = 10 << 20

// GetAuctions returns the current windowed view of the active set
func GetAuctions(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eng.View())
	}
}

type sortRequest struct {
	Criterion engine.SortCriterion `json:"criterion"`
	Direction engine.SortDirection `json:"direction"`
}

// SetSort activates a sort criterion and direction. An empty direction
// clears sorting.
func SetSort(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sortRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		switch req.Criterion {
		case engine.SortNone, engine.SortCreatedAt, engine.SortEndTime:
		default:
			writeError(w, http.StatusBadRequest, "unknown sort criterion")
			return
		}
		switch req.Direction {
		case engine.SortUnset, engine.SortAsc, engine.SortDesc:
		default:
			writeError(w, http.StatusBadRequest, "unknown sort direction")
			return
		}
		eng.SetSort(req.Criterion, req.Direction)
		writeJSON(w, http.StatusOK, eng.View())
	}
}

// NextPage advances the page window; a no-op on the last page
func NextPage(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.NextPage()
		writeJSON(w, http.StatusOK, eng.View())
	}
}

// PrevPage moves the page window back; a no-op on the first page
func PrevPage(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.PrevPage()
		writeJSON(w, http.StatusOK, eng.View())
	}
}

// SetPage jumps to a specific page
func SetPage(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Page int `json:"page"`
		}
		if err := decodeJSON(r, &req); err != nil || req.Page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		eng.SetPage(req.Page)
		writeJSON(w, http.StatusOK, eng.View())
	}
}

// SubmitAuction starts the submission pipeline from a multipart form:
// title, startPrice, lotDate (dd.mm.yyyy), lotTime (HH:MM) and the
// image file.
func SubmitAuction(submissions *services.SubmissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		draft := services.Draft{
			Title:   r.FormValue("title"),
			LotDate: r.FormValue("lotDate"),
			LotTime: r.FormValue("lotTime"),
		}
		if priceStr := r.FormValue("startPrice"); priceStr != "" {
			price, err := strconv.ParseFloat(priceStr, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "startPrice must be a number")
				return
			}
			draft.StartPrice = price
		}

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			content, err := io.ReadAll(file)
			if err != nil {
				writeError(w, http.StatusBadRequest, "could not read image")
				return
			}
			draft.Media = &services.MediaFile{
				Content:     content,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
			}
		}

		if err := submissions.Submit(r.Context(), draft); err != nil {
			var validation *services.ValidationError
			var upload *services.UploadError
			switch {
			case errors.As(err, &validation):
				writeError(w, http.StatusBadRequest, validation.Message)
			case errors.Is(err, services.ErrSubmissionInFlight):
				writeError(w, http.StatusConflict, err.Error())
			case errors.As(err, &upload):
				writeError(w, http.StatusBadGateway, upload.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{
			"state": string(submissions.State()),
		})
	}
}

// ResetSubmission clears the current draft on explicit user request
func ResetSubmission(submissions *services.SubmissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissions.Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetNotice returns the visible transient notice, 204 when none
func GetNotice(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notice, ok := eng.Notice()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, notice)
	}
}

// DismissNotice clears the transient notice slot
func DismissNotice(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.DismissNotice()
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetClosure returns the pending closure presentation, 204 when none
func GetClosure(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := eng.Closure()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// DismissClosure acknowledges the closure presentation
func DismissClosure(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.DismissClosure()
		w.WriteHeader(http.StatusNoContent)
	}
}
