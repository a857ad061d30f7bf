package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"imagedups/internal/models"
	"imagedups/internal/phash"
)

// Store persists image records, algorithm-tagged fingerprints and computed
// groups between runs. It doubles as the scanner's fingerprint cache: a
// lookup hits only when path, size, modification time, algorithm and
// tunables all match.
type Store struct {
	db   *sql.DB
	opts phash.Options
}

// schemaVersion identifies the cache layout. The store is a cache, so an
// older database is dropped and rebuilt rather than migrated.
const schemaVersion = 1

// NewStore opens (or creates) the database at dbPath for the given run
// options.
func NewStore(dbPath string, opts phash.Options) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, opts: opts}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	if v := s.currentVersion(); v != 0 && v != schemaVersion {
		if _, err := s.db.Exec(`
			DROP TABLE IF EXISTS images;
			DROP TABLE IF EXISTS scan_history;
			DELETE FROM schema_version;
		`); err != nil {
			return fmt.Errorf("reset outdated cache: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		params TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		content_digest TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		format TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		mod_time_ns INTEGER NOT NULL,
		has_exif INTEGER DEFAULT 0,
		score REAL NOT NULL,
		group_id INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(path, algorithm, params)
	);

	CREATE INDEX IF NOT EXISTS idx_images_digest ON images(content_digest);
	CREATE INDEX IF NOT EXISTS idx_images_group_id ON images(group_id);

	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_images INTEGER NOT NULL,
		total_groups INTEGER NOT NULL,
		total_duplicates INTEGER NOT NULL,
		total_failures INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion,
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

func (s *Store) currentVersion() int {
	var v int
	row := s.db.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`)
	if err := row.Scan(&v); err != nil {
		return 0
	}
	return v
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecords upserts records with their fingerprints under the run's
// algorithm and tunables.
func (s *Store) SaveRecords(records []*models.ImageRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO images
			(path, algorithm, params, fingerprint, content_digest,
			 width, height, format, file_size, mod_time_ns, has_exif, score, group_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path, algorithm, params) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			content_digest = excluded.content_digest,
			width = excluded.width,
			height = excluded.height,
			format = excluded.format,
			file_size = excluded.file_size,
			mod_time_ns = excluded.mod_time_ns,
			has_exif = excluded.has_exif,
			score = excluded.score,
			group_id = excluded.group_id
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.Fingerprint.IsZero() {
			continue
		}
		_, err := stmt.Exec(
			rec.Path, string(s.opts.Algorithm), s.opts.ParamsKey(),
			rec.Fingerprint.String(), rec.ContentDigest,
			rec.Width, rec.Height, rec.Format,
			rec.FileSize, rec.ModTime.UnixNano(), boolToInt(rec.HasExif),
			rec.Score, rec.GroupID,
		)
		if err != nil {
			return fmt.Errorf("save %s: %w", rec.Path, err)
		}
	}
	return tx.Commit()
}

// Lookup implements scan.FingerprintCache. It misses when the file changed
// since the fingerprint was stored.
func (s *Store) Lookup(path string, size int64, modTime time.Time) (phash.Fingerprint, bool) {
	var hexhash string
	var storedSize, storedModNs int64
	row := s.db.QueryRow(`
		SELECT fingerprint, file_size, mod_time_ns FROM images
		WHERE path = ? AND algorithm = ? AND params = ?
	`, path, string(s.opts.Algorithm), s.opts.ParamsKey())
	if err := row.Scan(&hexhash, &storedSize, &storedModNs); err != nil {
		return phash.Fingerprint{}, false
	}
	if storedSize != size || storedModNs != modTime.UnixNano() {
		return phash.Fingerprint{}, false
	}
	fp, err := phash.ParseFingerprint(s.opts.Algorithm, hexhash)
	if err != nil {
		return phash.Fingerprint{}, false
	}
	return fp, true
}

// UpdateGroups replaces the stored grouping for the run's algorithm and
// tunables.
func (s *Store) UpdateGroups(groups []*models.Group) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE images SET group_id = 0 WHERE algorithm = ? AND params = ?`,
		string(s.opts.Algorithm), s.opts.ParamsKey(),
	); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}

	for _, group := range groups {
		for _, img := range group.Images {
			if _, err := tx.Exec(
				`UPDATE images SET group_id = ? WHERE path = ? AND algorithm = ? AND params = ?`,
				group.ID, img.Path, string(s.opts.Algorithm), s.opts.ParamsKey(),
			); err != nil {
				return fmt.Errorf("update group for %s: %w", img.Path, err)
			}
		}
	}
	return tx.Commit()
}

// GetDuplicateGroups loads the stored grouping for the run's algorithm and
// tunables. Members come back in the order they were saved.
func (s *Store) GetDuplicateGroups() ([]*models.Group, error) {
	rows, err := s.db.Query(`
		SELECT path, fingerprint, content_digest, width, height, format,
		       file_size, mod_time_ns, has_exif, score, group_id
		FROM images
		WHERE group_id > 0 AND algorithm = ? AND params = ?
		ORDER BY group_id, id
	`, string(s.opts.Algorithm), s.opts.ParamsKey())
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*models.Group)
	var order []int
	for rows.Next() {
		var rec models.ImageRecord
		var hexhash string
		var modNs int64
		var hasExif int
		if err := rows.Scan(
			&rec.Path, &hexhash, &rec.ContentDigest,
			&rec.Width, &rec.Height, &rec.Format,
			&rec.FileSize, &modNs, &hasExif, &rec.Score, &rec.GroupID,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.ModTime = time.Unix(0, modNs)
		rec.HasExif = hasExif != 0
		if fp, err := phash.ParseFingerprint(s.opts.Algorithm, hexhash); err == nil {
			rec.Fingerprint = fp
		}

		group, ok := byID[rec.GroupID]
		if !ok {
			group = &models.Group{ID: rec.GroupID}
			byID[rec.GroupID] = group
			order = append(order, rec.GroupID)
		}
		group.Images = append(group.Images, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	groups := make([]*models.Group, 0, len(order))
	for _, id := range order {
		group := byID[id]
		selectKeep(group)
		groups = append(groups, group)
	}
	return groups, nil
}

// selectKeep recomputes the keep/remove split for a loaded group using the
// same ranking applied at scan time.
func selectKeep(group *models.Group) {
	sorted := make([]*models.ImageRecord, len(group.Images))
	copy(sorted, group.Images)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.FileSize != b.FileSize {
			return a.FileSize > b.FileSize
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Path < b.Path
	})
	group.Keep = sorted[0]
	group.Remove = sorted[1:]
}

// DeleteImage removes all cached entries for a path.
func (s *Store) DeleteImage(path string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Prune drops cache entries for files that no longer exist on disk. It
// returns how many entries were removed.
func (s *Store) Prune() (int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT path FROM images`)
	if err != nil {
		return 0, fmt.Errorf("query paths: %w", err)
	}
	var dead []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan row: %w", err)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			dead = append(dead, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate rows: %w", err)
	}

	for _, path := range dead {
		if err := s.DeleteImage(path); err != nil {
			return 0, err
		}
	}
	return len(dead), nil
}

// RecordScan appends one line of scan history.
func (s *Store) RecordScan(folder string, result *models.ScanResult) error {
	_, err := s.db.Exec(`
		INSERT INTO scan_history (folder, algorithm, total_images, total_groups, total_duplicates, total_failures)
		VALUES (?, ?, ?, ?, ?, ?)
	`, folder, string(s.opts.Algorithm),
		result.TotalScanned, result.TotalGroups, result.TotalDuplicates, len(result.Failures))
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
