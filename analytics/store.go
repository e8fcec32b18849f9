package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"
)

// Store persists visits in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_hash TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			day TEXT NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_visits_ts ON visits(ts);
		CREATE INDEX IF NOT EXISTS idx_visits_day ON visits(day);
		CREATE INDEX IF NOT EXISTS idx_visits_visitor ON visits(visitor_hash);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns the value for key, or "" when unset.
func (s *Store) GetSetting(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// SaveVisit stores one page view.
func (s *Store) SaveVisit(ctx context.Context, v Visit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (visitor_hash, path, referrer, day, ts) VALUES (?, ?, ?, ?, ?)`,
		v.VisitorHash, v.Path, v.Referrer, dayOf(v.Timestamp), v.Timestamp.UTC().Unix())
	return err
}

// Summary aggregates all stored visits, with the daily series covering the
// last days days up to now.
func (s *Store) Summary(ctx context.Context, now time.Time, days int) (Summary, error) {
	sum := Summary{TopReferrers: []DimensionStat{}, DailyViews: []DailyView{}}

	var last int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT visitor_hash), COALESCE(MAX(ts), 0) FROM visits`,
	).Scan(&sum.TotalViews, &sum.UniqueVisitors, &last)
	if err != nil {
		return sum, fmt.Errorf("count views: %w", err)
	}
	if last > 0 {
		sum.LastVisit = time.Unix(last, 0).UTC().Format("2006-01-02 15:04")
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visits WHERE day = ?`, dayOf(now)).Scan(&sum.TodayViews); err != nil {
		return sum, fmt.Errorf("today views: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT referrer, COUNT(*) AS n FROM visits
		WHERE referrer != '' GROUP BY referrer ORDER BY n DESC, referrer LIMIT 10`)
	if err != nil {
		return sum, fmt.Errorf("referrers: %w", err)
	}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			rows.Close()
			return sum, fmt.Errorf("referrers: %w", err)
		}
		sum.TopReferrers = append(sum.TopReferrers, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return sum, fmt.Errorf("referrers: %w", err)
	}

	daily, err := s.dailyViews(ctx, now, days)
	if err != nil {
		return sum, err
	}
	sum.DailyViews = daily
	return sum, nil
}

// dailyViews returns one entry per day, oldest first, zero-filled.
func (s *Store) dailyViews(ctx context.Context, now time.Time, days int) ([]DailyView, error) {
	if days < 1 {
		days = 1
	}
	from := now.UTC().AddDate(0, 0, -(days - 1))
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, COUNT(*) FROM visits WHERE day >= ? GROUP BY day`, dayOf(from))
	if err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("daily views: %w", err)
		}
		counts[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}

	out := make([]DailyView, days)
	for i := range out {
		d := dayOf(from.AddDate(0, 0, i))
		out[i] = DailyView{Date: d, Views: counts[d]}
	}
	return out, nil
}

// CleanupOldVisits removes visits older than retentionDays.
func (s *Store) CleanupOldVisits(now time.Time, retentionDays int) (int64, error) {
	cutoff := now.UTC().AddDate(0, 0, -retentionDays).Unix()
	res, err := s.db.Exec(`DELETE FROM visits WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visits: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanupScheduler runs CleanupOldVisits every interval until the
// returned stop function is called.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logger echo.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := s.CleanupOldVisits(time.Now(), retentionDays)
				if err != nil {
					logger.Errorf("analytics cleanup: %v", err)
					continue
				}
				if n > 0 {
					logger.Infof("analytics cleanup removed %d visits", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
