package match

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"imagedups/internal/models"
	"imagedups/internal/phash"
)

// Grouper partitions a set of image records into groups of likely
// duplicates: connected components over pairwise fingerprint matches, seeded
// with exact content-digest collisions.
type Grouper struct {
	opts    phash.Options
	workers int
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithWorkers sets the number of goroutines used for pairwise comparison.
func WithWorkers(n int) Option {
	return func(g *Grouper) {
		if n > 0 {
			g.workers = n
		}
	}
}

// NewGrouper creates a Grouper for the given, already validated, run
// options.
func NewGrouper(opts phash.Options, options ...Option) *Grouper {
	g := &Grouper{
		opts:    opts,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Group partitions records into duplicate groups. Byte-identical files
// (equal content digest) always share a group; beyond that, two records end
// up together when a chain of pairwise fingerprint matches under the run
// threshold connects them. Singletons are dropped.
//
// The result is deterministic for a fixed input order, algorithm and
// threshold, regardless of worker count.
func (g *Grouper) Group(records []*models.ImageRecord) ([]*models.Group, error) {
	n := len(records)
	if n < 2 {
		return nil, nil
	}

	uf := newUnionFind(n)

	// Exact duplicates are merged before any perceptual work.
	for _, set := range digestSets(records) {
		for _, idx := range set[1:] {
			uf.union(set[0], idx)
		}
	}

	var err error
	switch g.opts.Algorithm {
	case phash.AlgorithmDCT:
		g.unionDCTMatches(records, uf)
	default:
		err = g.unionDigestMatches(records, uf)
	}
	if err != nil {
		return nil, err
	}

	return buildGroups(records, uf.find), nil
}

// unionDCTMatches finds Hamming neighbors through a BK-tree instead of
// scanning all pairs. Insert-then-query over the input sequence visits every
// matching pair exactly once.
func (g *Grouper) unionDCTMatches(records []*models.ImageRecord, uf *unionFind) {
	threshold := int(g.opts.Threshold)
	tree := newBKTree()
	for i, rec := range records {
		if rec.Fingerprint.IsZero() {
			continue
		}
		for _, j := range tree.findWithinDistance(rec.Fingerprint.DCT(), threshold) {
			uf.union(i, j)
		}
		tree.insert(rec.Fingerprint.DCT(), i)
	}
}

// unionDigestMatches evaluates all pairs of byte-digest fingerprints,
// spreading rows across workers. Fingerprints are immutable so comparison
// needs no locking; unions mutate shared parent pointers and are serialized
// behind one mutex.
func (g *Grouper) unionDigestMatches(records []*models.ImageRecord, uf *unionFind) error {
	n := len(records)
	var mu sync.Mutex
	var next int64

	var eg errgroup.Group
	for w := 0; w < g.workers; w++ {
		eg.Go(func() error {
			for {
				i := int(atomic.AddInt64(&next, 1)) - 1
				if i >= n {
					return nil
				}
				if records[i].Fingerprint.IsZero() {
					continue
				}
				for j := i + 1; j < n; j++ {
					if records[j].Fingerprint.IsZero() {
						continue
					}
					ok, err := g.opts.Matches(records[i].Fingerprint, records[j].Fingerprint)
					if err != nil {
						return err
					}
					if ok {
						mu.Lock()
						uf.union(i, j)
						mu.Unlock()
					}
				}
			}
		})
	}
	return eg.Wait()
}
