package db

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

// Store archives simulated readings in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS building;
CREATE TABLE IF NOT EXISTS building.readings (
    session_id  text             NOT NULL,
    ts          timestamptz      NOT NULL,
    floor       text             NOT NULL,
    zone        text             NOT NULL,
    temperature double precision NOT NULL,
    humidity    double precision NOT NULL,
    co2         double precision NOT NULL,
    lighting    double precision NOT NULL,
    motion      smallint         NOT NULL,
    power_kw    double precision NOT NULL,
    ingested_at timestamptz      NOT NULL DEFAULT NOW(),
    PRIMARY KEY (session_id, ts, floor, zone)
);
`

// EnsureSchema creates the archive table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

const insertReadingSQL = `INSERT INTO building.readings (session_id, ts, floor, zone, temperature, humidity, co2, lighting, motion, power_kw)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (session_id, ts, floor, zone) DO NOTHING`

// InsertReadings writes a batch of readings for one session.
func (s *Store) InsertReadings(ctx context.Context, sessionID string, readings []sim.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range readings {
		batch.Queue(insertReadingSQL,
			sessionID, r.Timestamp, r.Floor, r.Zone,
			r.Temperature, r.Humidity, r.CO2, r.Lighting, r.MotionFlag(), r.PowerKW,
		)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range readings {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Publish archives a tick batch.
func (s *Store) Publish(ctx context.Context, sessionID string, batch []sim.Reading) error {
	return s.InsertReadings(ctx, sessionID, batch)
}

// ArchivedReading is a reading tagged with the session that produced it.
type ArchivedReading struct {
	SessionID string `json:"session_id"`
	sim.Reading
}

// ReadingQuery holds filters for retrieving archived readings.
type ReadingQuery struct {
	SessionID string
	Floor     string
	Zone      string
	Since     *time.Time
	Until     *time.Time
	// Limit keeps only the newest Limit rows; results stay in ascending order.
	Limit int
}

const readingsBase = `
    SELECT session_id, ts, floor, zone, temperature, humidity, co2, lighting, motion, power_kw
    FROM building.readings
    WHERE session_id = $1`

func buildReadingsQuery(q ReadingQuery) (string, []any) {
	args := []any{q.SessionID}
	clause := ""
	argPos := 2
	if q.Floor != "" {
		clause += " AND floor = $" + strconv.Itoa(argPos)
		args = append(args, q.Floor)
		argPos++
	}
	if q.Zone != "" {
		clause += " AND zone = $" + strconv.Itoa(argPos)
		args = append(args, q.Zone)
		argPos++
	}
	if q.Since != nil {
		clause += " AND ts >= $" + strconv.Itoa(argPos)
		args = append(args, *q.Since)
		argPos++
	}
	if q.Until != nil {
		clause += " AND ts <= $" + strconv.Itoa(argPos)
		args = append(args, *q.Until)
		argPos++
	}

	if q.Limit <= 0 {
		return readingsBase + clause + " ORDER BY ts, floor, zone", args
	}
	args = append(args, q.Limit)
	sql := "SELECT * FROM (" + readingsBase + clause +
		" ORDER BY ts DESC, floor DESC, zone DESC LIMIT $" + strconv.Itoa(argPos) +
		") newest ORDER BY ts, floor, zone"
	return sql, args
}

// FetchReadings returns archived readings matching q in ascending time order.
func (s *Store) FetchReadings(ctx context.Context, q ReadingQuery) ([]ArchivedReading, error) {
	sql, args := buildReadingsQuery(q)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ArchivedReading, 0)
	for rows.Next() {
		var r ArchivedReading
		var motion int16
		if err := rows.Scan(
			&r.SessionID,
			&r.Timestamp,
			&r.Floor,
			&r.Zone,
			&r.Temperature,
			&r.Humidity,
			&r.CO2,
			&r.Lighting,
			&motion,
			&r.PowerKW,
		); err != nil {
			return nil, err
		}
		r.Motion = motion != 0
		r.Timestamp = r.Timestamp.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
