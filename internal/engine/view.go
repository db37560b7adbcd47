package engine

import (
	"sort"
	"time"

	"github.com/bidfeed/bidfeed-client/internal/models"
)

// SortCriterion selects which timestamp orders the active set. Exactly
// one criterion is active at a time.
type SortCriterion string

const (
	SortNone      SortCriterion = "none"
	SortCreatedAt SortCriterion = "createdAt"
	SortEndTime   SortCriterion = "endTime"
)

// SortDirection is meaningful only when a criterion is active
type SortDirection string

const (
	SortUnset SortDirection = ""
	SortAsc   SortDirection = "asc"
	SortDesc  SortDirection = "desc"
)

// View is the windowed, ordered projection of the active set that the
// presentation boundary reads. It is recomputed as a whole on every
// relevant change; there is no partially updated intermediate view.
type View struct {
	Auctions    []models.AuctionRecord `json:"auctions"`
	Page        int                    `json:"page"`
	PerPage     int                    `json:"perPage"`
	TotalPages  int                    `json:"totalPages"`
	ActiveCount int                    `json:"activeCount"`
	SortBy      SortCriterion          `json:"sortBy"`
	Direction   SortDirection          `json:"sortDirection,omitempty"`
}

// ActiveSet returns the records open for bidding at the given instant,
// preserving the order of the input.
func ActiveSet(records []models.AuctionRecord, now time.Time) []models.AuctionRecord {
	out := make([]models.AuctionRecord, 0, len(records))
	for _, r := range records {
		if r.IsActive(now) {
			out = append(out, r)
		}
	}
	return out
}

// SortRecords orders records by the chosen criterion in place. Equal
// keys keep their relative order, and SortNone leaves the input as is.
func SortRecords(records []models.AuctionRecord, criterion SortCriterion, direction SortDirection) {
	if criterion == SortNone || direction == SortUnset {
		return
	}
	key := func(r models.AuctionRecord) time.Time { return r.CreatedAt }
	if criterion == SortEndTime {
		key = func(r models.AuctionRecord) time.Time { return r.EndTime }
	}
	sort.SliceStable(records, func(i, j int) bool {
		if direction == SortDesc {
			return key(records[j]).Before(key(records[i]))
		}
		return key(records[i]).Before(key(records[j]))
	})
}

// Paginate windows seq into fixed-size pages. The returned page index
// is the requested one clamped into [1, totalPages]; an empty sequence
// still has one (empty) page, and a window size below 1 is treated
// as 1.
func Paginate(seq []models.AuctionRecord, perPage, page int) (items []models.AuctionRecord, totalPages, clamped int) {
	if perPage < 1 {
		perPage = 1
	}
	totalPages = (len(seq) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	clamped = page
	if clamped < 1 {
		clamped = 1
	}
	if clamped > totalPages {
		clamped = totalPages
	}
	start := (clamped - 1) * perPage
	if start >= len(seq) {
		return []models.AuctionRecord{}, totalPages, clamped
	}
	end := start + perPage
	if end > len(seq) {
		end = len(seq)
	}
	return seq[start:end], totalPages, clamped
}

// DeriveView computes the full projection from a record sequence and
// the current wall clock.
func DeriveView(records []models.AuctionRecord, criterion SortCriterion, direction SortDirection, page, perPage int, now time.Time) View {
	active := ActiveSet(records, now)
	SortRecords(active, criterion, direction)
	items, totalPages, clamped := Paginate(active, perPage, page)
	return View{
		Auctions:    items,
		Page:        clamped,
		PerPage:     perPage,
		TotalPages:  totalPages,
		ActiveCount: len(active),
		SortBy:      criterion,
		Direction:   direction,
	}
}
