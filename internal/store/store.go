// Package store holds the catalog entities in an in-memory arena keyed by id.
//
// Readers work on an immutable snapshot that is swapped atomically, so they never wait on
// writers. Structural writers (create, update, delete) are serialized among themselves, build
// the next snapshot as a copy, run every invariant check, persist the changeset and only then
// publish. Stock counters live outside the snapshots, one per product or variant, each with its
// own lock, so stock mutations on different entities never contend.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"catalog-service/internal/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Persister is the durable backing of the store. Apply must be all-or-nothing.
type Persister interface {
	Load(ctx context.Context) (*Dataset, error)
	Apply(ctx context.Context, cs *Changeset) error
}

// Dataset is the full persisted catalog, used to hydrate the store at boot
type Dataset struct {
	Categories   []model.Category
	Products     []model.Product
	Variants     []model.ProductVariant
	Images       []model.ProductImage
	Plans        []model.SubscriptionPlan
	PlanProducts []model.PlanProduct
}

// StockTarget tells which table a stock change applies to
type StockTarget int

const (
	StockProduct StockTarget = iota
	StockVariant
)

// StockChange sets the absolute stock quantity of one product or variant
type StockChange struct {
	Target   StockTarget
	ID       uint
	Quantity int
}

// Changeset is one atomic unit of persistence work. Saves and Deletes hold pointers to model
// records; PlanLinks replaces the full product set of each listed plan (nil clears it).
type Changeset struct {
	Saves     []interface{}
	Deletes   []interface{}
	Stock     []StockChange
	PlanLinks map[uint][]uint
}

func (cs *Changeset) save(records ...interface{}) {
	cs.Saves = append(cs.Saves, records...)
}

func (cs *Changeset) remove(records ...interface{}) {
	cs.Deletes = append(cs.Deletes, records...)
}

func (cs *Changeset) link(planID uint, productIDs []uint) {
	if cs.PlanLinks == nil {
		cs.PlanLinks = make(map[uint][]uint)
	}
	cs.PlanLinks[planID] = productIDs
}

// NopPersister keeps the catalog in memory only
type NopPersister struct{}

func (NopPersister) Load(context.Context) (*Dataset, error)  { return &Dataset{}, nil }
func (NopPersister) Apply(context.Context, *Changeset) error { return nil }

type skuOwner struct {
	variant bool
	id      uint
}

type snapshot struct {
	categories map[uint]model.Category
	products   map[uint]model.Product
	variants   map[uint]model.ProductVariant
	images     map[uint]model.ProductImage
	plans      map[uint]model.SubscriptionPlan
	planLinks  map[uint][]uint

	categorySlugs map[string]uint
	categoryNames map[string]uint
	productSlugs  map[string]uint
	skus          map[string]skuOwner

	productStock map[uint]*stockCell
	variantStock map[uint]*stockCell
}

func newSnapshot() *snapshot {
	return &snapshot{
		categories:    make(map[uint]model.Category),
		products:      make(map[uint]model.Product),
		variants:      make(map[uint]model.ProductVariant),
		images:        make(map[uint]model.ProductImage),
		plans:         make(map[uint]model.SubscriptionPlan),
		planLinks:     make(map[uint][]uint),
		categorySlugs: make(map[string]uint),
		categoryNames: make(map[string]uint),
		productSlugs:  make(map[string]uint),
		skus:          make(map[string]skuOwner),
		productStock:  make(map[uint]*stockCell),
		variantStock:  make(map[uint]*stockCell),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every index. Records are values and link slices are never mutated in place,
// so a shallow copy is enough.
func (s *snapshot) clone() *snapshot {
	return &snapshot{
		categories:    cloneMap(s.categories),
		products:      cloneMap(s.products),
		variants:      cloneMap(s.variants),
		images:        cloneMap(s.images),
		plans:         cloneMap(s.plans),
		planLinks:     cloneMap(s.planLinks),
		categorySlugs: cloneMap(s.categorySlugs),
		categoryNames: cloneMap(s.categoryNames),
		productSlugs:  cloneMap(s.productSlugs),
		skus:          cloneMap(s.skus),
		productStock:  cloneMap(s.productStock),
		variantStock:  cloneMap(s.variantStock),
	}
}

type sequences struct {
	category, product, variant, image, plan uint
}

// Store is the Entity Store
type Store struct {
	persister Persister
	log       *zap.Logger
	now       func() time.Time

	current atomic.Pointer[snapshot]
	writeMu sync.Mutex
	seq     sequences
}

// Option customizes a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store backed by persister. A nil persister keeps data in memory only.
func New(persister Persister, log *zap.Logger, opts ...Option) *Store {
	if persister == nil {
		persister = NopPersister{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{persister: persister, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(newSnapshot())
	return s
}

// Load replaces the store content with the persisted dataset
func (s *Store) Load(ctx context.Context) error {
	ds, err := s.persister.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := newSnapshot()
	var seq sequences
	for _, c := range ds.Categories {
		snap.categories[c.ID] = c
		snap.categorySlugs[c.Slug] = c.ID
		snap.categoryNames[c.Name] = c.ID
		seq.category = max(seq.category, c.ID)
	}
	for _, p := range ds.Products {
		snap.products[p.ID] = p
		snap.productSlugs[p.Slug] = p.ID
		snap.skus[p.SKU] = skuOwner{id: p.ID}
		snap.productStock[p.ID] = newStockCell(p.StockQuantity)
		seq.product = max(seq.product, p.ID)
	}
	for _, v := range ds.Variants {
		snap.variants[v.ID] = v
		snap.skus[v.SKU] = skuOwner{variant: true, id: v.ID}
		snap.variantStock[v.ID] = newStockCell(v.StockQuantity)
		seq.variant = max(seq.variant, v.ID)
	}
	for _, img := range ds.Images {
		snap.images[img.ID] = img
		seq.image = max(seq.image, img.ID)
	}
	for _, plan := range ds.Plans {
		snap.plans[plan.ID] = plan
		seq.plan = max(seq.plan, plan.ID)
	}
	for _, link := range ds.PlanProducts {
		snap.planLinks[link.PlanID] = append(snap.planLinks[link.PlanID], link.ProductID)
	}
	for planID, ids := range snap.planLinks {
		snap.planLinks[planID] = sortedIDs(ids)
	}

	s.seq = seq
	s.current.Store(snap)
	s.log.Info("Catalog loaded",
		zap.Int("categories", len(ds.Categories)),
		zap.Int("products", len(ds.Products)),
		zap.Int("variants", len(ds.Variants)),
		zap.Int("images", len(ds.Images)),
		zap.Int("plans", len(ds.Plans)))
	return nil
}

// View returns a read-only view over the current snapshot
func (s *Store) View() *View {
	return &View{snap: s.current.Load()}
}

// commit persists cs and publishes next. Callers hold writeMu and have finished every
// invariant check; on error nothing becomes visible.
func (s *Store) commit(ctx context.Context, next *snapshot, cs *Changeset) error {
	if err := s.persister.Apply(ctx, cs); err != nil {
		return errors.Wrap(err, "persist catalog change")
	}
	s.current.Store(next)
	return nil
}
