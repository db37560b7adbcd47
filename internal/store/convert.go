package store

import (
	"fmt"
	"time"

	"github.com/bidfeed/bidfeed-client/internal/models"
)

const timeLayout = time.RFC3339Nano

func (row snapshotRow) toRecord() (models.AuctionRecord, error) {
	endTime, err := time.Parse(timeLayout, row.EndTime)
	if err != nil {
		return models.AuctionRecord{}, fmt.Errorf("snapshot row %s end_time: %w", row.ID, err)
	}
	createdAt, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return models.AuctionRecord{}, fmt.Errorf("snapshot row %s created_at: %w", row.ID, err)
	}
	updatedAt, err := time.Parse(timeLayout, row.UpdatedAt)
	if err != nil {
		return models.AuctionRecord{}, fmt.Errorf("snapshot row %s updated_at: %w", row.ID, err)
	}

	rec := models.AuctionRecord{
		ID:         row.ID,
		Title:      row.Title,
		StartPrice: row.StartPrice,
		EndTime:    endTime,
		ImageURL:   row.ImageURL,
		Status:     models.AuctionStatus(row.Status),
		Creator:    models.Creator{ID: row.CreatorID, UserName: row.CreatorName},
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		CurrentBid: row.CurrentBid,
	}
	if row.WinnerUser != nil && row.WinnerAmount != nil {
		rec.Winner = &models.Winner{User: *row.WinnerUser, Amount: *row.WinnerAmount}
	}
	return rec, nil
}
