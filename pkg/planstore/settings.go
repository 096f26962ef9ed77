package planstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const thresholdKey = "threshold_meters"

// Threshold returns the persisted remaining-yardage threshold in meters,
// or DefaultThresholdMeters when none has been stored yet.
func (s *Store) Threshold(ctx context.Context) (float64, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, thresholdKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultThresholdMeters, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read threshold: %w", err)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("stored threshold %q is not numeric: %w", value, err)
	}
	return f, nil
}

// SetThreshold stores the remaining-yardage threshold. Negative values are
// rejected; zero is legal and means only open machines count as viable.
func (s *Store) SetThreshold(ctx context.Context, meters float64) error {
	if meters < 0 {
		return errors.New("threshold must not be negative")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		thresholdKey, strconv.FormatFloat(meters, 'f', -1, 64), now())
	if err != nil {
		return fmt.Errorf("store threshold: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
