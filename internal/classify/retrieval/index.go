// internal/classify/retrieval/index.go
// Package retrieval provides nearest-neighbor lookup over a corpus of
// labeled dish descriptors, plus the weighted-vote evidence derived
// from the neighbors.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"menu-classifier/internal/classify/keyword"
	"menu-classifier/internal/models"
)

// Neighbor is one retrieval hit. Label is a models leaning value;
// Similarity is in [0,1].
type Neighbor struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Similarity float64 `json:"similarity"`
}

// Searcher is the capability the aggregator depends on. Implementations
// must be safe for concurrent queries.
type Searcher interface {
	Query(ctx context.Context, text string, k int) ([]Neighbor, error)
}

// Upserter is implemented by backends whose corpus can grow at runtime.
type Upserter interface {
	Upsert(text, label string)
}

type entry struct {
	key   string
	name  string
	label string
	vec   map[string]float64
	norm  float64
}

// Index is an in-memory cosine index over term-frequency vectors.
// Readers load an immutable snapshot, so an upsert is never observed as
// a torn read; writers are serialized by a mutex. Neighbors are ordered
// by descending similarity with ties broken by corpus insertion order.
type Index struct {
	mu   sync.Mutex
	snap atomic.Pointer[[]entry]
}

func NewIndex() *Index {
	idx := &Index{}
	empty := make([]entry, 0)
	idx.snap.Store(&empty)
	return idx
}

// Len returns the current corpus size.
func (idx *Index) Len() int {
	return len(*idx.snap.Load())
}

// Upsert adds a labeled descriptor, or relabels an existing one with
// the same case-normalized text. The swap is copy-on-write.
func (idx *Index) Upsert(text, label string) {
	key := strings.ToLower(strings.TrimSpace(text))
	if key == "" {
		return
	}
	vec, norm := vectorize(text)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	old := *idx.snap.Load()
	next := make([]entry, len(old), len(old)+1)
	copy(next, old)

	replaced := false
	for i := range next {
		if next[i].key == key {
			next[i].label = label
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, entry{key: key, name: text, label: label, vec: vec, norm: norm})
	}
	idx.snap.Store(&next)
}

// Query returns the top-k neighbors of text by cosine similarity. An
// empty corpus or k=0 yields no neighbors.
func (idx *Index) Query(_ context.Context, text string, k int) ([]Neighbor, error) {
	corpus := *idx.snap.Load()
	if len(corpus) == 0 || k <= 0 {
		return nil, nil
	}

	qvec, qnorm := vectorize(text)
	if qnorm == 0 {
		return nil, nil
	}

	hits := make([]Neighbor, 0, len(corpus))
	for _, e := range corpus {
		sim := cosine(qvec, qnorm, e.vec, e.norm)
		hits = append(hits, Neighbor{Name: e.name, Label: e.label, Similarity: sim})
	}

	// Stable sort keeps insertion order among equal similarities.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func vectorize(text string) (map[string]float64, float64) {
	vec := make(map[string]float64)
	for _, tok := range keyword.Tokenize(text) {
		vec[tok]++
	}
	var sq float64
	for _, c := range vec {
		sq += c * c
	}
	return vec, math.Sqrt(sq)
}

func cosine(a map[string]float64, anorm float64, b map[string]float64, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for tok, ac := range a {
		if bc, ok := b[tok]; ok {
			dot += ac * bc
		}
	}
	return dot / (anorm * bnorm)
}

// ToEvidence fuses neighbors into one Evidence by majority vote weighted
// by similarity: the leaning is the label with the highest summed
// similarity, the strength is that sum normalized by the total over all
// neighbors. No neighbors yields leaning none.
func ToEvidence(neighbors []Neighbor) models.Evidence {
	if len(neighbors) == 0 {
		return models.Evidence{Source: models.SourceRetrieval, Leaning: models.LeanNone}
	}

	var vegSum, nonVegSum float64
	for _, n := range neighbors {
		switch n.Label {
		case models.LeanVegetarian:
			vegSum += n.Similarity
		case models.LeanNonVegetarian:
			nonVegSum += n.Similarity
		}
	}

	total := vegSum + nonVegSum
	if total == 0 {
		return models.Evidence{Source: models.SourceRetrieval, Leaning: models.LeanNone}
	}

	// Ties go to non-vegetarian: overclaiming vegetarian status is the
	// worse error for this domain.
	leaning := models.LeanNonVegetarian
	winning := nonVegSum
	if vegSum > nonVegSum {
		leaning = models.LeanVegetarian
		winning = vegSum
	}

	return models.Evidence{
		Source:   models.SourceRetrieval,
		Leaning:  leaning,
		Strength: winning / total,
		Rationale: fmt.Sprintf("nearest labeled dish %q (similarity %.2f), %d of %d neighbors agree",
			neighbors[0].Name, neighbors[0].Similarity, countLabel(neighbors, leaning), len(neighbors)),
	}
}

func countLabel(neighbors []Neighbor, label string) int {
	n := 0
	for _, nb := range neighbors {
		if nb.Label == label {
			n++
		}
	}
	return n
}
