package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"piweather/internal/types"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-latest-readings.sql
var getLatestReadingsSQL string

// tsLayout is fixed width so stored timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type ReadingRepository interface {
	InsertReading(ctx context.Context, r types.Reading) error
	LatestReadings(ctx context.Context, limit int) ([]types.Reading, error)
	Ping(ctx context.Context) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ReadingRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertReading(ctx context.Context, rd types.Reading) error {
	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.ID.String(), rd.Sequence, rd.Timestamp.UTC().Format(tsLayout),
		rd.TempF, rd.TempC, rd.TempFromHumidityF, rd.TempFromPressureF,
		rd.PressureInHg, rd.HumidityPct, rd.CPUTempF,
		rd.GPIOTempF, rd.GPIOHumidity, rd.GPIODewPointF, rd.GPIOStale,
		rd.OneWireTempF, rd.OneWireStale, rd.BlendedDewPointF, rd.Trend,
	)
	if err != nil {
		return fmt.Errorf("insert reading %s: %w", rd.ID, err)
	}
	return nil
}

func (r *repositoryImpl) LatestReadings(ctx context.Context, limit int) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getLatestReadingsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()
	return scanReadings(rows)
}

func (r *repositoryImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanReadings(rows *sql.Rows) ([]types.Reading, error) {
	out := []types.Reading{}
	for rows.Next() {
		var rec types.Reading
		var id, ts string
		if err := rows.Scan(
			&id, &rec.Sequence, &ts,
			&rec.TempF, &rec.TempC, &rec.TempFromHumidityF, &rec.TempFromPressureF,
			&rec.PressureInHg, &rec.HumidityPct, &rec.CPUTempF,
			&rec.GPIOTempF, &rec.GPIOHumidity, &rec.GPIODewPointF, &rec.GPIOStale,
			&rec.OneWireTempF, &rec.OneWireStale, &rec.BlendedDewPointF, &rec.Trend,
		); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("reading id %q: %w", id, err)
		}
		rec.ID = parsed
		t, err := time.Parse(tsLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("reading %s timestamp %q: %w", id, ts, err)
		}
		rec.Timestamp = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountReadings returns the number of stored readings.
func CountReadings(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
