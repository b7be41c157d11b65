package ch

import (
	"context"
	"testing"
	"time"

	"cryptomate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

// runMigrations manually creates the schema from migrations/
func runMigrations(ctx context.Context, db *ClickHouseDB) error {
	_ = db.conn.Exec(ctx, "DROP TABLE IF EXISTS exchange_requests")

	return db.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS exchange_requests (
			created_at DateTime,
			user_id Int64,
			give_token String,
			get_token String,
			give_method LowCardinality(String),
			get_method LowCardinality(String),
			give_code String,
			get_code String,
			location String,
			link String
		) ENGINE = MergeTree()
		ORDER BY (created_at, user_id)
	`)
}

// setupTestDB creates a test ClickHouse instance using testcontainers
func setupTestDB(t *testing.T) (*ClickHouseDB, func()) {
	if testing.Short() {
		t.Skip("skipping ClickHouse container test in short mode")
	}

	ctx := context.Background()

	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	db, err := NewClickHouseDB(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	err = runMigrations(ctx, db)
	require.NoError(t, err, "Failed to run migrations")

	cleanup := func() {
		db.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return db, cleanup
}

func record(userID int64, give, get string, at time.Time) models.ExchangeRecord {
	return models.ExchangeRecord{
		CreatedAt:  at,
		UserID:     userID,
		GiveToken:  give,
		GetToken:   get,
		GiveMethod: "crypto",
		GetMethod:  "crypto",
		GiveCode:   give,
		GetCode:    get,
		Location:   "online",
		Link:       "https://www.bestchange.com/" + give + "-to-" + get + ".html",
	}
}

// TestClickHouseDB_SaveExchange tests saving and reading back a record
func TestClickHouseDB_SaveExchange(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	at := time.Now().UTC().Truncate(time.Second)
	rec := models.ExchangeRecord{
		CreatedAt:  at,
		UserID:     42,
		GiveToken:  "UAH",
		GetToken:   "USD",
		GiveMethod: "card",
		GetMethod:  "cash",
		GiveCode:   "visa-mastercard-uah",
		GetCode:    "cash-dollar",
		Location:   "Kyiv",
		Link:       "https://www.bestchange.com/visa-mastercard-uah-to-cash-dollar.html",
	}
	require.NoError(t, db.SaveExchange(ctx, rec))

	records, err := db.LastExchanges(ctx, 42, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.WithinDuration(t, at, got.CreatedAt, time.Second)
	got.CreatedAt = rec.CreatedAt
	assert.Equal(t, rec, got)
}

// TestClickHouseDB_LastExchanges tests ordering, user filtering and limits
func TestClickHouseDB_LastExchanges(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	require.NoError(t, db.SaveExchange(ctx, record(1, "bitcoin", "ethereum", base)))
	require.NoError(t, db.SaveExchange(ctx, record(2, "monero", "bitcoin", base.Add(time.Minute))))
	require.NoError(t, db.SaveExchange(ctx, record(1, "toncoin", "tether-trc20", base.Add(2*time.Minute))))

	records, err := db.LastExchanges(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "toncoin", records[0].GiveCode)
	assert.Equal(t, "bitcoin", records[1].GiveCode)

	records, err = db.LastExchanges(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "toncoin", records[0].GiveCode)
	assert.Equal(t, "monero", records[1].GiveCode)
}

// TestClickHouseDB_TopPairs tests aggregation by resolved pair
func TestClickHouseDB_TopPairs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.SaveExchange(ctx, record(int64(i), "sberbank", "tether-trc20", now)))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, db.SaveExchange(ctx, record(int64(i), "bitcoin", "ethereum", now)))
	}
	require.NoError(t, db.SaveExchange(ctx, record(9, "litecoin", "bitcoin", now)))
	require.NoError(t, db.SaveExchange(ctx, record(9, "monero", "bitcoin", now.AddDate(0, -3, 0))))

	stats, err := db.TopPairs(ctx, 10, now.AddDate(0, -1, 0))
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, models.PairStat{GiveCode: "sberbank", GetCode: "tether-trc20", Count: 3}, stats[0])
	assert.Equal(t, models.PairStat{GiveCode: "bitcoin", GetCode: "ethereum", Count: 2}, stats[1])
	assert.Equal(t, models.PairStat{GiveCode: "litecoin", GetCode: "bitcoin", Count: 1}, stats[2])
}
