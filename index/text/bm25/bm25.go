package bm25

import (
	"math"
	"strings"
	"sync"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
)

const (
	k1 = 1.2
	b  = 0.75
)

var (
	_ index.TextQuerier   = (*Index)(nil)
	_ index.ExtentQuerier = (*Index)(nil)
	_ index.Maintainer    = (*Index)(nil)
)

// Index is an in-memory positional inverted index.
type Index struct {
	name  string
	field string

	mu sync.RWMutex
	// term -> doc -> positions
	inverted    map[string]map[model.DocID][]int
	docTerms    map[model.DocID][]string
	docLengths  map[model.DocID]int
	totalLength int64
	domain      *idset.Set
}

// Option configures an Index.
type Option func(*Index)

// WithField reads text from the named document field instead of the index
// name.
func WithField(field string) Option {
	return func(ix *Index) {
		ix.field = field
	}
}

// New creates an empty text index.
func New(name string, opts ...Option) *Index {
	ix := &Index{
		name:       name,
		field:      name,
		inverted:   make(map[string]map[model.DocID][]int),
		docTerms:   make(map[model.DocID][]string),
		docLengths: make(map[model.DocID]int),
		domain:     idset.New(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Capabilities implements index.Index.
func (ix *Index) Capabilities() index.Capability {
	return index.CapText | index.CapExtent
}

// Add indexes text for id, replacing previous text.
func (ix *Index) Add(id model.DocID, text string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.deleteLocked(id)

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for pos, t := range tokens {
		postings, ok := ix.inverted[t]
		if !ok {
			postings = make(map[model.DocID][]int)
			ix.inverted[t] = postings
		}
		postings[id] = append(postings[id], pos)
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}

	ix.docTerms[id] = terms
	ix.docLengths[id] = len(tokens)
	ix.totalLength += int64(len(tokens))
	ix.domain.Add(id)
}

// Delete removes id from the index.
func (ix *Index) Delete(id model.DocID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.deleteLocked(id)
}

func (ix *Index) deleteLocked(id model.DocID) {
	length, ok := ix.docLengths[id]
	if !ok {
		return
	}
	for _, t := range ix.docTerms[id] {
		postings := ix.inverted[t]
		delete(postings, id)
		if len(postings) == 0 {
			delete(ix.inverted, t)
		}
	}
	delete(ix.docTerms, id)
	delete(ix.docLengths, id)
	ix.totalLength -= int64(length)
	ix.domain.Remove(id)
}

// IndexDoc implements index.Maintainer. String and string-array values are
// indexed; other kinds leave the document unindexed.
func (ix *Index) IndexDoc(id model.DocID, doc value.Document) error {
	var parts []string
	for _, v := range doc[ix.field].Elements() {
		if s, ok := v.AsString(); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		ix.Delete(id)
		return nil
	}
	ix.Add(id, strings.Join(parts, " "))
	return nil
}

// UnindexDoc implements index.Maintainer.
func (ix *Index) UnindexDoc(id model.DocID) {
	ix.Delete(id)
}

// All implements index.Index.
func (ix *Index) All() *idset.Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.domain.Clone()
}

// MatchText implements index.TextQuerier.
func (ix *Index) MatchText(query string) (*idset.Set, error) {
	n, err := parse(query)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.evalLocked(n), nil
}

// Score returns BM25 scores for the documents matching query. Only words
// outside NOT clauses contribute to the score.
func (ix *Index) Score(query string) (map[model.DocID]float64, error) {
	n, err := parse(query)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matched := ix.evalLocked(n)
	scores := make(map[model.DocID]float64, matched.Len())
	if matched.IsEmpty() {
		return scores, nil
	}

	avgDL := float64(ix.totalLength) / float64(len(ix.docLengths))
	for _, t := range n.terms(nil) {
		postings, ok := ix.inverted[t]
		if !ok {
			continue
		}
		idf := ix.computeIDF(len(postings))
		for id, positions := range postings {
			if !matched.Contains(id) {
				continue
			}
			tf := float64(len(positions))
			docLen := float64(ix.docLengths[id])

			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(docLen/avgDL))
			scores[id] += idf * (num / denom)
		}
	}
	for id := range matched.All() {
		if _, ok := scores[id]; !ok {
			scores[id] = 0
		}
	}
	return scores, nil
}

func (ix *Index) computeIDF(df int) float64 {
	// IDF = log(1 + (N - n + 0.5) / (n + 0.5))
	N := float64(len(ix.docLengths))
	n := float64(df)
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// ExtentAny implements index.ExtentQuerier.
func (ix *Index) ExtentAny(extent *idset.Set) (*idset.Set, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if extent == nil {
		return ix.domain.Clone(), nil
	}
	return idset.Intersect(extent, ix.domain), nil
}

// ExtentNone implements index.ExtentQuerier.
func (ix *Index) ExtentNone(extent *idset.Set) (*idset.Set, error) {
	if extent == nil {
		return idset.New(), nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return idset.Difference(extent, ix.domain), nil
}

// evalLocked evaluates n. Caller must hold ix.mu.RLock().
func (ix *Index) evalLocked(n node) *idset.Set {
	switch n := n.(type) {
	case wordNode:
		return ix.postingSetLocked(n.word)
	case prefixNode:
		var sets []*idset.Set
		for t := range ix.inverted {
			if strings.HasPrefix(t, n.prefix) {
				sets = append(sets, ix.postingSetLocked(t))
			}
		}
		return idset.Union(sets...)
	case phraseNode:
		return ix.phraseLocked(n.words)
	case andNode:
		// NOT children subtract from the positive part.
		var pos, neg []*idset.Set
		for _, c := range n.children {
			if nn, ok := c.(notNode); ok {
				neg = append(neg, ix.evalLocked(nn.child))
				continue
			}
			s := ix.evalLocked(c)
			if s.IsEmpty() {
				return idset.New()
			}
			pos = append(pos, s)
		}
		if len(pos) == 0 {
			return idset.Difference(ix.domain, neg...)
		}
		return idset.Difference(idset.Intersect(pos...), neg...)
	case orNode:
		sets := make([]*idset.Set, 0, len(n.children))
		for _, c := range n.children {
			sets = append(sets, ix.evalLocked(c))
		}
		return idset.Union(sets...)
	case notNode:
		return idset.Difference(ix.domain, ix.evalLocked(n.child))
	default:
		return idset.New()
	}
}

func (ix *Index) postingSetLocked(term string) *idset.Set {
	out := idset.New()
	for id := range ix.inverted[term] {
		out.Add(id)
	}
	return out
}

func (ix *Index) phraseLocked(words []string) *idset.Set {
	sets := make([]*idset.Set, len(words))
	for i, w := range words {
		sets[i] = ix.postingSetLocked(w)
	}
	out := idset.New()
	for id := range idset.Intersect(sets...).All() {
		if ix.adjacentLocked(id, words) {
			out.Add(id)
		}
	}
	return out
}

// adjacentLocked reports whether words occur consecutively in id.
func (ix *Index) adjacentLocked(id model.DocID, words []string) bool {
	for _, start := range ix.inverted[words[0]][id] {
		ok := true
		for off, w := range words[1:] {
			if !containsInt(ix.inverted[w][id], start+off+1) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func containsInt(sorted []int, v int) bool {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if sorted[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(sorted) && sorted[lo] == v
}
