package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"imagedups/internal/models"
	"imagedups/internal/phash"
)

// FingerprintCache supplies fingerprints computed in a previous run. A
// lookup must only hit when the file is unchanged and the cached fingerprint
// was produced under the current algorithm and tunables.
type FingerprintCache interface {
	Lookup(path string, size int64, modTime time.Time) (phash.Fingerprint, bool)
}

// Scanner walks folders for images and hashes them in parallel. Each
// worker writes its record's fingerprint exactly once; records are immutable
// afterwards.
type Scanner struct {
	hasher     *Hasher
	workers    int
	timeout    time.Duration
	cache      FingerprintCache
	progressFn func(scanned, total int, current string)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the number of parallel hashing workers.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout sets the per-image decode+hash timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithCache sets a fingerprint cache consulted before hashing.
func WithCache(c FingerprintCache) Option {
	return func(s *Scanner) {
		s.cache = c
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn func(scanned, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// NewScanner creates a Scanner for the given, already validated, run
// options.
func NewScanner(opts phash.Options, options ...Option) *Scanner {
	s := &Scanner{
		hasher:  NewHasher(opts),
		workers: 8,
		timeout: 30 * time.Second,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// ScanFolder recursively collects supported images under folder and hashes
// them. Records come back in traversal order with Index assigned; images
// that could not be processed come back as failures, never as an error for
// the whole scan.
func (s *Scanner) ScanFolder(folder string) ([]*models.ImageRecord, []models.Failure, error) {
	var paths []string
	err := filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if info.IsDir() {
			return nil
		}
		if IsSupportedImage(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk folder: %w", err)
	}

	return s.ScanPaths(paths)
}

// ScanPaths hashes an explicit ordered list of image paths.
func (s *Scanner) ScanPaths(paths []string) ([]*models.ImageRecord, []models.Failure, error) {
	if len(paths) == 0 {
		return nil, nil, nil
	}

	type outcome struct {
		order   int
		record  *models.ImageRecord
		failure *models.Failure
	}

	var (
		outcomes []outcome
		mu       sync.Mutex
		wg       sync.WaitGroup
		scanned  int64
		total    = len(paths)
	)

	// Byte-identical files share one fingerprint: only the first of each
	// digest pays the transform cost.
	shared := newDigestFingerprints()

	type job struct {
		order int
		path  string
	}
	work := make(chan job, len(paths))
	for i, p := range paths {
		work <- job{order: i, path: p}
	}
	close(work)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range work {
				rec, err := s.processWithTimeout(j.path, shared)

				var out outcome
				out.order = j.order
				if err != nil {
					out.failure = &models.Failure{Path: j.path, Reason: err.Error()}
				} else {
					out.record = rec
				}

				mu.Lock()
				outcomes = append(outcomes, out)
				mu.Unlock()

				n := atomic.AddInt64(&scanned, 1)
				if s.progressFn != nil {
					s.progressFn(int(n), total, j.path)
				}
			}
		}()
	}

	wg.Wait()

	// Completion order depends on scheduling; re-sort by input order so the
	// result is deterministic.
	sort.Slice(outcomes, func(a, b int) bool { return outcomes[a].order < outcomes[b].order })

	var records []*models.ImageRecord
	var failures []models.Failure
	for _, out := range outcomes {
		if out.failure != nil {
			failures = append(failures, *out.failure)
			continue
		}
		out.record.Index = len(records)
		records = append(records, out.record)
	}
	return records, failures, nil
}

// process builds one record, reusing a cached or digest-shared fingerprint
// when possible.
func (s *Scanner) process(path string, shared *digestFingerprints) (*models.ImageRecord, error) {
	rec, err := s.hasher.Describe(path)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if fp, ok := s.cache.Lookup(path, rec.FileSize, rec.ModTime); ok {
			rec.Fingerprint = fp
			shared.put(rec.ContentDigest, fp)
			return rec, nil
		}
	}

	if fp, ok := shared.get(rec.ContentDigest); ok {
		rec.Fingerprint = fp
		return rec, nil
	}

	fp, err := s.hasher.Fingerprint(path)
	if err != nil {
		return nil, err
	}
	rec.Fingerprint = fp
	shared.put(rec.ContentDigest, fp)
	return rec, nil
}

// processWithTimeout bounds the decode+hash of a single image. A timed-out
// image is reported like any other per-image failure.
func (s *Scanner) processWithTimeout(path string, shared *digestFingerprints) (*models.ImageRecord, error) {
	if s.timeout <= 0 {
		return s.process(path, shared)
	}

	done := make(chan struct{})
	var rec *models.ImageRecord
	var err error

	go func() {
		rec, err = s.process(path, shared)
		close(done)
	}()

	select {
	case <-done:
		return rec, err
	case <-time.After(s.timeout):
		return nil, fmt.Errorf("timeout hashing image: %s", path)
	}
}

// digestFingerprints is a concurrent map of content digest to fingerprint.
// A racing miss only costs a redundant hash, never a wrong result.
type digestFingerprints struct {
	mu sync.Mutex
	m  map[string]phash.Fingerprint
}

func newDigestFingerprints() *digestFingerprints {
	return &digestFingerprints{m: make(map[string]phash.Fingerprint)}
}

func (d *digestFingerprints) get(digest string) (phash.Fingerprint, bool) {
	if digest == "" {
		return phash.Fingerprint{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fp, ok := d.m[digest]
	return fp, ok
}

func (d *digestFingerprints) put(digest string, fp phash.Fingerprint) {
	if digest == "" || fp.IsZero() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.m[digest]; !exists {
		d.m[digest] = fp
	}
}
