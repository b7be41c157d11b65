package storage

import (
	"context"
	"time"

	"cryptomate/internal/models"
)

// Storage defines the interface for the exchange request log
type Storage interface {
	// SaveExchange appends a completed exchange request
	SaveExchange(ctx context.Context, record models.ExchangeRecord) error

	// LastExchanges returns the newest records first.
	// If userID is 0, records of all users are returned.
	LastExchanges(ctx context.Context, userID int64, limit int) ([]models.ExchangeRecord, error)

	// TopPairs returns the most requested resolved pairs since the given time,
	// ordered by count descending, then by codes
	TopPairs(ctx context.Context, limit int, since time.Time) ([]models.PairStat, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
