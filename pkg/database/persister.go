package database

import (
	"context"
	"sort"
	"time"

	"catalog-service/internal/model"
	"catalog-service/internal/store"
	"catalog-service/prometheus"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persister stores catalog changesets in postgres, one transaction per changeset
type Persister struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPersister wraps db
func NewPersister(db *gorm.DB, log *zap.Logger) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Persister{db: db, log: log}
}

// Load reads every catalog table in id order
func (p *Persister) Load(ctx context.Context) (*store.Dataset, error) {
	defer prometheus.TrackDBOperation("load")(time.Now())

	ds := &store.Dataset{}
	tx := p.db.WithContext(ctx)
	targets := []struct {
		name string
		dest interface{}
	}{
		{"categories", &ds.Categories},
		{"products", &ds.Products},
		{"product variants", &ds.Variants},
		{"product images", &ds.Images},
		{"subscription plans", &ds.Plans},
	}
	for _, t := range targets {
		if err := tx.Order("id").Find(t.dest).Error; err != nil {
			return nil, errors.Wrapf(err, "load %s", t.name)
		}
	}
	if err := tx.Order("plan_id, product_id").Find(&ds.PlanProducts).Error; err != nil {
		return nil, errors.Wrap(err, "load plan products")
	}
	return ds, nil
}

// Apply commits cs atomically. Saves run first so new plans exist before their links,
// then plan links, then deletes in the order given, then stock updates.
func (p *Persister) Apply(ctx context.Context, cs *store.Changeset) error {
	defer prometheus.TrackDBOperation("apply")(time.Now())

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range cs.Saves {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error; err != nil {
				return errors.Wrapf(err, "save %T", record)
			}
		}
		if err := replacePlanLinks(tx, cs.PlanLinks); err != nil {
			return err
		}
		for _, record := range cs.Deletes {
			if err := tx.Delete(record).Error; err != nil {
				return errors.Wrapf(err, "delete %T", record)
			}
		}
		for _, change := range cs.Stock {
			if err := updateStock(tx, change); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		p.log.Error("Catalog changeset rolled back",
			zap.Int("saves", len(cs.Saves)),
			zap.Int("deletes", len(cs.Deletes)),
			zap.Int("stock_changes", len(cs.Stock)),
			zap.Error(err))
	}
	return err
}

func replacePlanLinks(tx *gorm.DB, links map[uint][]uint) error {
	planIDs := make([]uint, 0, len(links))
	for id := range links {
		planIDs = append(planIDs, id)
	}
	sort.Slice(planIDs, func(i, j int) bool { return planIDs[i] < planIDs[j] })

	for _, planID := range planIDs {
		if err := tx.Where("plan_id = ?", planID).Delete(&model.PlanProduct{}).Error; err != nil {
			return errors.Wrapf(err, "clear products of plan %d", planID)
		}
		productIDs := links[planID]
		if len(productIDs) == 0 {
			continue
		}
		rows := make([]model.PlanProduct, 0, len(productIDs))
		for _, productID := range productIDs {
			rows = append(rows, model.PlanProduct{PlanID: planID, ProductID: productID})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return errors.Wrapf(err, "link products of plan %d", planID)
		}
	}
	return nil
}

func updateStock(tx *gorm.DB, change store.StockChange) error {
	var target interface{} = &model.Product{}
	if change.Target == store.StockVariant {
		target = &model.ProductVariant{}
	}
	res := tx.Model(target).Where("id = ?", change.ID).Update("stock_quantity", change.Quantity)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update stock of %T %d", target, change.ID)
	}
	if res.RowsAffected == 0 {
		return errors.Errorf("update stock of %T %d: no such row", target, change.ID)
	}
	return nil
}
