package store

import (
	"context"
	"fmt"

	"github.com/bidfeed/bidfeed-client/internal/models"
)

// SnapshotRepository persists the last bulk auction list so the local
// projection survives a restart. It holds exactly one snapshot; each
// Replace supersedes the previous one wholesale, mirroring how a bulk
// notification supersedes the in-memory store.
type SnapshotRepository struct {
	db *Database
}

// NewSnapshotRepository creates a SnapshotRepository
func NewSnapshotRepository(db *Database) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type snapshotRow struct {
	Position     int      `db:"position"`
	ID           string   `db:"id"`
	Title        string   `db:"title"`
	StartPrice   float64  `db:"start_price"`
	EndTime      string   `db:"end_time"`
	ImageURL     string   `db:"image_url"`
	Status       string   `db:"status"`
	CreatorID    string   `db:"creator_id"`
	CreatorName  string   `db:"creator_name"`
	CreatedAt    string   `db:"created_at"`
	UpdatedAt    string   `db:"updated_at"`
	CurrentBid   *float64 `db:"current_bid"`
	WinnerUser   *string  `db:"winner_user"`
	WinnerAmount *float64 `db:"winner_amount"`
}

// Replace swaps the stored snapshot for the given records in one
// transaction, keeping their order.
func (r *SnapshotRepository) Replace(ctx context.Context, records []models.AuctionRecord) error {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM auction_snapshot`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	const insert = `INSERT INTO auction_snapshot
		(position, id, title, start_price, end_time, image_url, status,
		 creator_id, creator_name, created_at, updated_at,
		 current_bid, winner_user, winner_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, rec := range records {
		var winnerUser *string
		var winnerAmount *float64
		if rec.Winner != nil {
			winnerUser = &rec.Winner.User
			winnerAmount = &rec.Winner.Amount
		}
		_, err := tx.ExecContext(ctx, insert,
			i, rec.ID, rec.Title, rec.StartPrice,
			rec.EndTime.UTC().Format(timeLayout), rec.ImageURL, string(rec.Status),
			rec.Creator.ID, rec.Creator.UserName,
			rec.CreatedAt.UTC().Format(timeLayout), rec.UpdatedAt.UTC().Format(timeLayout),
			rec.CurrentBid, winnerUser, winnerAmount,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot row %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot replace: %w", err)
	}
	return nil
}

// Load returns the stored snapshot in its original order. A missing or
// empty snapshot yields an empty slice, not an error.
func (r *SnapshotRepository) Load(ctx context.Context) ([]models.AuctionRecord, error) {
	rows := []snapshotRow{}
	const query = `SELECT position, id, title, start_price, end_time, image_url, status,
		creator_id, creator_name, created_at, updated_at,
		current_bid, winner_user, winner_amount
		FROM auction_snapshot ORDER BY position`
	if err := r.db.GetDB().SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	records := make([]models.AuctionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
