package testutil

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/termq/catalog"
	"github.com/hupe1980/termq/index/field"
	"github.com/hupe1980/termq/index/set"
	"github.com/hupe1980/termq/intid"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/value"
)

// Catalog is the catalog name used by NewSite.
const Catalog = "gen"

var (
	// Color is a single-valued string field, missing on some documents.
	Color = model.Ref(Catalog, "color")
	// Size is a single-valued int field present on every document.
	Size = model.Ref(Catalog, "size")
	// Tags is a multi-valued string field.
	Tags = model.Ref(Catalog, "tags")

	colors  = []string{"red", "green", "blue", "black", "white", "teal"}
	tagPool = []string{"a", "b", "c", "d", "e"}
)

const maxSize = 20

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Doc is a generated document.
type Doc struct {
	ID    model.DocID
	Color string // empty means missing
	Size  int64
	Tags  []string
}

// Fields returns the indexable fields of d.
func (d *Doc) Fields() value.Document {
	fields := value.Document{
		"size": value.Int(d.Size),
		"tags": value.Strings(d.Tags),
	}
	if d.Color != "" {
		fields["color"] = value.String(d.Color)
	}
	return fields
}

// Docs generates n documents with ids 1..n. Colors are Zipf distributed and
// missing on roughly one document in ten.
func (r *RNG) Docs(n int) []*Doc {
	docs := make([]*Doc, n)
	for i := range docs {
		d := &Doc{ID: model.DocID(i + 1), Size: int64(r.Intn(maxSize))}
		if r.Intn(10) > 0 {
			d.Color = colors[r.Zipf(len(colors), 1.2)]
		}
		for _, tag := range tagPool {
			if r.Intn(3) == 0 {
				d.Tags = append(d.Tags, tag)
			}
		}
		docs[i] = d
	}
	return docs
}

// NewSite indexes docs into a fresh catalog and registers them with an
// intid registry, in order, so registry ids match Doc.ID.
func NewSite(docs []*Doc) (*catalog.Site, error) {
	cat := catalog.New(Catalog)
	for _, err := range []error{
		cat.Add(field.New(Color.Index)),
		cat.Add(field.New(Size.Index)),
		cat.Add(set.New(Tags.Index)),
	} {
		if err != nil {
			return nil, err
		}
	}

	objects := intid.New()
	for _, d := range docs {
		id, err := objects.Register(context.Background(), d)
		if err != nil {
			return nil, err
		}
		if id != d.ID {
			return nil, fmt.Errorf("registered doc %d as id %d", d.ID, id)
		}
		if err := cat.IndexDoc(id, d.Fields()); err != nil {
			return nil, err
		}
	}
	return catalog.NewSite("gen", catalog.WithCatalog(cat), catalog.WithObjects(objects)), nil
}

func (r *RNG) color() value.Value {
	return value.String(colors[r.Intn(len(colors))])
}

func (r *RNG) tags(max int) []value.Value {
	n := r.Intn(max + 1)
	out := make([]value.Value, n)
	for i := range out {
		out[i] = value.String(tagPool[r.Intn(len(tagPool))])
	}
	return out
}

func (r *RNG) bound() value.Value {
	if r.Intn(4) == 0 {
		return value.Null()
	}
	return value.Int(int64(r.Intn(maxSize + 2)))
}

func (r *RNG) boundOpts() []query.BoundOption {
	var opts []query.BoundOption
	if r.Intn(2) == 0 {
		opts = append(opts, query.ExcludeMin())
	}
	if r.Intn(2) == 0 {
		opts = append(opts, query.ExcludeMax())
	}
	return opts
}

// Term generates a random term over Color, Size and Tags with at most depth
// levels of combinators.
func (r *RNG) Term(depth int) query.Term {
	if depth <= 0 || r.Intn(3) == 0 {
		return r.leaf()
	}

	children := func() []query.Term {
		out := make([]query.Term, 1+r.Intn(3))
		for i := range out {
			out[i] = r.Term(depth - 1)
		}
		return out
	}

	switch r.Intn(4) {
	case 0:
		return query.And(children()...)
	case 1:
		return query.Or(children()...)
	case 2:
		return query.Not(r.Term(depth - 1))
	default:
		c := children()
		return query.Difference(r.Term(depth-1), c...)
	}
}

func (r *RNG) leaf() query.Term {
	switch r.Intn(10) {
	case 0:
		return query.All([]model.IndexRef{Color, Size, Tags}[r.Intn(3)])
	case 1:
		return query.Eq(Color, r.color())
	case 2:
		return query.NotEq(Color, r.color())
	case 3:
		vs := make([]value.Value, r.Intn(3))
		for i := range vs {
			vs[i] = r.color()
		}
		return query.In(Color, vs...)
	case 4:
		return query.Between(Size, r.bound(), r.bound(), r.boundOpts()...)
	case 5:
		return query.Ge(Size, value.Int(int64(r.Intn(maxSize))))
	case 6:
		return query.Lt(Size, value.Int(int64(r.Intn(maxSize))))
	case 7:
		return query.AnyOf(Tags, r.tags(2)...)
	case 8:
		return query.AllOf(Tags, r.tags(2)...)
	default:
		lo := value.String(tagPool[r.Intn(len(tagPool))])
		hi := value.String(tagPool[r.Intn(len(tagPool))])
		return query.SetBetween(Tags, lo, hi, r.boundOpts()...)
	}
}

// BruteForce evaluates t by scanning docs. It supports the terms Term
// generates and is the reference the index-backed evaluator is checked
// against.
func BruteForce(t query.Term, docs []*Doc) []model.DocID {
	out := []model.DocID{}
	for _, d := range docs {
		if matches(t, d) {
			out = append(out, d.ID)
		}
	}
	return out
}

func matches(t query.Term, d *Doc) bool {
	switch t.Op() {
	case query.OpAll:
		return has(t.Ref(), d)
	case query.OpEq:
		return d.Color != "" && d.Color == t.Value().StringValue()
	case query.OpNotEq:
		return d.Color != "" && d.Color != t.Value().StringValue()
	case query.OpIn:
		return d.Color != "" && slices.ContainsFunc(t.Values(), func(v value.Value) bool {
			return v.StringValue() == d.Color
		})
	case query.OpBetween:
		return t.Range().Contains(value.Int(d.Size))
	case query.OpAnyOf:
		return slices.ContainsFunc(t.Values(), func(v value.Value) bool {
			return slices.Contains(d.Tags, v.StringValue())
		})
	case query.OpAllOf:
		if len(d.Tags) == 0 {
			return false
		}
		for _, v := range t.Values() {
			if !slices.Contains(d.Tags, v.StringValue()) {
				return false
			}
		}
		return true
	case query.OpSetBetween:
		rng := t.Range()
		return slices.ContainsFunc(d.Tags, func(tag string) bool {
			return rng.Contains(value.String(tag))
		})
	case query.OpAnd:
		children := t.Children()
		if len(children) == 0 {
			return false
		}
		for _, c := range children {
			if !matches(c, d) {
				return false
			}
		}
		return true
	case query.OpOr:
		for _, c := range t.Children() {
			if matches(c, d) {
				return true
			}
		}
		return false
	case query.OpNot:
		return !matches(t.Children()[0], d)
	case query.OpDifference:
		children := t.Children()
		if !matches(children[0], d) {
			return false
		}
		for _, c := range children[1:] {
			if matches(c, d) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("testutil: unsupported op %s", t.Op()))
	}
}

func has(ref model.IndexRef, d *Doc) bool {
	switch ref {
	case Color:
		return d.Color != ""
	case Tags:
		return len(d.Tags) > 0
	default:
		return true
	}
}
