package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"cryptomate/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	return nil
}

// SaveExchange appends a completed exchange request
func (db *ClickHouseDB) SaveExchange(ctx context.Context, r models.ExchangeRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	err := db.conn.Exec(ctx, `INSERT INTO exchange_requests
		(created_at, user_id, give_token, get_token, give_method, get_method, give_code, get_code, location, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CreatedAt, r.UserID, r.GiveToken, r.GetToken, r.GiveMethod, r.GetMethod, r.GiveCode, r.GetCode, r.Location, r.Link)
	if err != nil {
		return fmt.Errorf("failed to save exchange request: %w", err)
	}
	return nil
}

// LastExchanges returns the newest records first; userID 0 means all users
func (db *ClickHouseDB) LastExchanges(ctx context.Context, userID int64, limit int) ([]models.ExchangeRecord, error) {
	query := `SELECT created_at, user_id, give_token, get_token, give_method, get_method, give_code, get_code, location, link
		FROM exchange_requests`
	args := []any{}
	if userID != 0 {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get last exchanges: %w", err)
	}
	defer rows.Close()

	var records []models.ExchangeRecord
	for rows.Next() {
		var r models.ExchangeRecord
		if err := rows.Scan(&r.CreatedAt, &r.UserID, &r.GiveToken, &r.GetToken, &r.GiveMethod, &r.GetMethod,
			&r.GiveCode, &r.GetCode, &r.Location, &r.Link); err != nil {
			return nil, fmt.Errorf("failed to scan exchange request: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// TopPairs returns the most requested resolved pairs since the given time
func (db *ClickHouseDB) TopPairs(ctx context.Context, limit int, since time.Time) ([]models.PairStat, error) {
	rows, err := db.conn.Query(ctx, `SELECT give_code, get_code, count() AS requests
		FROM exchange_requests
		WHERE created_at >= ?
		GROUP BY give_code, get_code
		ORDER BY requests DESC, give_code, get_code
		LIMIT ?`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top pairs: %w", err)
	}
	defer rows.Close()

	var stats []models.PairStat
	for rows.Next() {
		var (
			stat  models.PairStat
			count uint64
		)
		if err := rows.Scan(&stat.GiveCode, &stat.GetCode, &count); err != nil {
			return nil, fmt.Errorf("failed to scan pair stat: %w", err)
		}
		stat.Count = int(count)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
