package store

import (
	"context"
	"testing"
	"time"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
func uintPtr(n uint) *uint    { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func statusPtr(s model.ProductStatus) *model.ProductStatus { return &s }

type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) Load(ctx context.Context) (*Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*Dataset)
	return ds, args.Error(1)
}

func (m *mockPersister) Apply(ctx context.Context, cs *Changeset) error {
	return m.Called(ctx, cs).Error(0)
}

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	clock time.Time
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.clock = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	suite.store = New(nil, nil, WithClock(func() time.Time {
		suite.clock = suite.clock.Add(time.Second)
		return suite.clock
	}))
}

func (suite *StoreTestSuite) category(name, slug string) model.Category {
	c, err := suite.store.CreateCategory(suite.ctx, model.CategoryInput{Name: strPtr(name), Slug: strPtr(slug)})
	require.NoError(suite.T(), err)
	return c
}

func (suite *StoreTestSuite) product(categoryID uint, slug, sku string, stock int) model.Product {
	p, err := suite.store.CreateProduct(suite.ctx, model.ProductInput{
		Name:          strPtr("Product " + slug),
		Slug:          strPtr(slug),
		SKU:           strPtr(sku),
		Price:         decPtr("12.50"),
		CategoryID:    uintPtr(categoryID),
		StockQuantity: intPtr(stock),
		Status:        statusPtr(model.StatusActive),
	})
	require.NoError(suite.T(), err)
	return p
}

func (suite *StoreTestSuite) requireKind(err error, kind apperror.Kind) {
	require.Error(suite.T(), err)
	require.Equal(suite.T(), kind, apperror.KindOf(err), err.Error())
}

func (suite *StoreTestSuite) TestCreateCategoryDefaultsAndUniqueness() {
	c := suite.category("Coffee", "coffee")
	require.True(suite.T(), c.IsActive)
	require.Equal(suite.T(), uint(1), c.ID)

	_, err := suite.store.CreateCategory(suite.ctx, model.CategoryInput{Name: strPtr("Coffee"), Slug: strPtr("other")})
	suite.requireKind(err, apperror.KindValidation)

	_, err = suite.store.CreateCategory(suite.ctx, model.CategoryInput{Name: strPtr("Other"), Slug: strPtr("coffee")})
	suite.requireKind(err, apperror.KindValidation)

	_, err = suite.store.CreateCategory(suite.ctx, model.CategoryInput{Name: strPtr("Bad"), Slug: strPtr("not a slug")})
	suite.requireKind(err, apperror.KindValidation)

	got, ok := suite.store.View().CategoryBySlug("coffee")
	require.True(suite.T(), ok)
	require.Equal(suite.T(), c.ID, got.ID)
}

func (suite *StoreTestSuite) TestCategorySlugCannotChange() {
	c := suite.category("Coffee", "coffee")

	_, err := suite.store.UpdateCategory(suite.ctx, c.ID, model.CategoryInput{Slug: strPtr("beans")}, true)
	suite.requireKind(err, apperror.KindValidation)

	updated, err := suite.store.UpdateCategory(suite.ctx, c.ID, model.CategoryInput{IsActive: boolPtr(false)}, true)
	require.NoError(suite.T(), err)
	require.False(suite.T(), updated.IsActive)
	require.Equal(suite.T(), "Coffee", updated.Name)

	_, err = suite.store.UpdateCategory(suite.ctx, c.ID, model.CategoryInput{Description: strPtr("x")}, false)
	suite.requireKind(err, apperror.KindValidation)
}

func (suite *StoreTestSuite) TestCreateProductDefaults() {
	c := suite.category("Coffee", "coffee")
	p, err := suite.store.CreateProduct(suite.ctx, model.ProductInput{
		Name:       strPtr("House Blend"),
		Slug:       strPtr("house-blend"),
		SKU:        strPtr("HB-1"),
		Price:      decPtr("10.00"),
		CategoryID: uintPtr(c.ID),
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.ProductTypeBean, p.ProductType)
	require.Equal(suite.T(), model.StatusDraft, p.Status)
	require.True(suite.T(), p.TrackInventory)
	require.True(suite.T(), p.RequiresShipping)
	require.Equal(suite.T(), "taxable", p.TaxStatus)
}

func (suite *StoreTestSuite) TestProductValidation() {
	c := suite.category("Coffee", "coffee")
	suite.product(c.ID, "house", "SKU-1", 5)

	base := func() model.ProductInput {
		return model.ProductInput{
			Name:       strPtr("Espresso"),
			Slug:       strPtr("espresso"),
			SKU:        strPtr("SKU-2"),
			Price:      decPtr("9.00"),
			CategoryID: uintPtr(c.ID),
		}
	}

	in := base()
	in.Slug = strPtr("house")
	_, err := suite.store.CreateProduct(suite.ctx, in)
	suite.requireKind(err, apperror.KindValidation)

	in = base()
	in.SKU = strPtr("SKU-1")
	_, err = suite.store.CreateProduct(suite.ctx, in)
	suite.requireKind(err, apperror.KindValidation)

	in = base()
	in.Name = strPtr("Product house")
	_, err = suite.store.CreateProduct(suite.ctx, in)
	suite.requireKind(err, apperror.KindValidation)

	in = base()
	in.Price = decPtr("0")
	_, err = suite.store.CreateProduct(suite.ctx, in)
	suite.requireKind(err, apperror.KindValidation)

	in = base()
	in.StockQuantity = intPtr(-1)
	_, err = suite.store.CreateProduct(suite.ctx, in)
	suite.requireKind(err, apperror.KindValidation)

	in = base()
	in.CategoryID = uintPtr(99)
	_, err = suite.store.CreateProduct(suite.ctx, in)
	suite.requireKind(err, apperror.KindReference)

	require.Len(suite.T(), suite.store.View().Products(), 1)
}

func (suite *StoreTestSuite) TestUpdateProductCategoryMustExist() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 5)

	_, err := suite.store.UpdateProduct(suite.ctx, p.ID, model.ProductInput{CategoryID: uintPtr(42)}, true)
	suite.requireKind(err, apperror.KindReference)

	other := suite.category("Gear", "gear")
	moved, err := suite.store.UpdateProduct(suite.ctx, p.ID, model.ProductInput{CategoryID: uintPtr(other.ID)}, true)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), other.ID, moved.CategoryID)
	require.True(suite.T(), moved.UpdatedAt.After(p.UpdatedAt))

	_, err = suite.store.UpdateProduct(suite.ctx, p.ID, model.ProductInput{Slug: strPtr("renamed")}, true)
	suite.requireKind(err, apperror.KindValidation)

	_, err = suite.store.UpdateProduct(suite.ctx, 77, model.ProductInput{}, true)
	suite.requireKind(err, apperror.KindNotFound)
}

func (suite *StoreTestSuite) TestComparePriceCanBeCleared() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 5)

	updated, err := suite.store.UpdateProduct(suite.ctx, p.ID, model.ProductInput{
		ComparePrice: model.Some(decimal.RequireFromString("20.00")),
	}, true)
	require.NoError(suite.T(), err)
	require.True(suite.T(), updated.ComparePrice.Valid)

	updated, err = suite.store.UpdateProduct(suite.ctx, p.ID, model.ProductInput{
		ComparePrice: model.Null[decimal.Decimal](),
	}, true)
	require.NoError(suite.T(), err)
	require.False(suite.T(), updated.ComparePrice.Valid)
}

func (suite *StoreTestSuite) TestSKUIsGlobalAcrossProductsAndVariants() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 5)

	_, err := suite.store.CreateVariant(suite.ctx, model.VariantInput{
		ProductID: uintPtr(p.ID), Name: strPtr("1kg"), SKU: strPtr("SKU-1"), Price: decPtr("30.00"),
	})
	suite.requireKind(err, apperror.KindValidation)

	v, err := suite.store.CreateVariant(suite.ctx, model.VariantInput{
		ProductID: uintPtr(p.ID), Name: strPtr("1kg"), SKU: strPtr("SKU-1-KG"), Price: decPtr("30.00"),
	})
	require.NoError(suite.T(), err)
	require.True(suite.T(), v.IsActive)

	_, err = suite.store.CreateVariant(suite.ctx, model.VariantInput{
		ProductID: uintPtr(p.ID), Name: strPtr("1kg"), SKU: strPtr("SKU-1-KG2"), Price: decPtr("30.00"),
	})
	suite.requireKind(err, apperror.KindValidation)

	in := model.ProductInput{
		Name: strPtr("Other"), Slug: strPtr("other"), SKU: strPtr("SKU-1-KG"),
		Price: decPtr("5.00"), CategoryID: uintPtr(c.ID),
	}
	_, err = suite.store.CreateProduct(suite.ctx, in)
	suite.requireKind(err, apperror.KindValidation)

	_, err = suite.store.CreateVariant(suite.ctx, model.VariantInput{
		ProductID: uintPtr(99), Name: strPtr("x"), SKU: strPtr("X"), Price: decPtr("1.00"),
	})
	suite.requireKind(err, apperror.KindReference)
}

func (suite *StoreTestSuite) TestDecrementStock() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 10)

	qty, err := suite.store.DecrementProductStock(suite.ctx, p.ID, 4)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 6, qty)

	qty, err = suite.store.DecrementProductStock(suite.ctx, p.ID, 7)
	suite.requireKind(err, apperror.KindInsufficientStock)
	require.Equal(suite.T(), 6, qty)

	got, _ := suite.store.View().Product(p.ID)
	require.Equal(suite.T(), 6, got.StockQuantity)

	qty, err = suite.store.IncrementProductStock(suite.ctx, p.ID, 2)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 8, qty)

	_, err = suite.store.DecrementProductStock(suite.ctx, p.ID, 0)
	suite.requireKind(err, apperror.KindValidation)

	_, err = suite.store.DecrementProductStock(suite.ctx, 404, 1)
	suite.requireKind(err, apperror.KindNotFound)
}

func (suite *StoreTestSuite) TestConcurrentDecrementsLoseNoUpdates() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 1000)

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		n := i%5 + 1
		g.Go(func() error {
			_, err := suite.store.DecrementProductStock(suite.ctx, p.ID, n)
			return err
		})
	}
	require.NoError(suite.T(), g.Wait())

	// 20 rounds of 1+2+3+4+5
	got, _ := suite.store.View().Product(p.ID)
	require.Equal(suite.T(), 1000-20*15, got.StockQuantity)
}

func (suite *StoreTestSuite) TestConcurrentDecrementsNeverGoNegative() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 10)

	var g errgroup.Group
	results := make(chan error, 30)
	for i := 0; i < 30; i++ {
		g.Go(func() error {
			_, err := suite.store.DecrementProductStock(suite.ctx, p.ID, 1)
			results <- err
			return nil
		})
	}
	require.NoError(suite.T(), g.Wait())
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		suite.requireKind(err, apperror.KindInsufficientStock)
	}
	require.Equal(suite.T(), 10, succeeded)

	got, _ := suite.store.View().Product(p.ID)
	require.Equal(suite.T(), 0, got.StockQuantity)
}

func (suite *StoreTestSuite) TestVariantStock() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 10)
	v, err := suite.store.CreateVariant(suite.ctx, model.VariantInput{
		ProductID: uintPtr(p.ID), Name: strPtr("250g"), SKU: strPtr("SKU-1-250"),
		Price: decPtr("8.00"), StockQuantity: intPtr(3),
	})
	require.NoError(suite.T(), err)

	_, err = suite.store.DecrementVariantStock(suite.ctx, v.ID, 4)
	suite.requireKind(err, apperror.KindInsufficientStock)

	qty, err := suite.store.DecrementVariantStock(suite.ctx, v.ID, 3)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, qty)

	updated, err := suite.store.UpdateVariant(suite.ctx, v.ID, model.VariantInput{Position: intPtr(2)}, true)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, updated.StockQuantity)
	require.Equal(suite.T(), 2, updated.Position)
}

func (suite *StoreTestSuite) TestDeleteCategoryCascades() {
	c := suite.category("Coffee", "coffee")
	keep := suite.category("Gear", "gear")
	a := suite.product(c.ID, "a", "SKU-A", 1)
	b := suite.product(c.ID, "b", "SKU-B", 1)
	other := suite.product(keep.ID, "c", "SKU-C", 1)

	_, err := suite.store.CreateImage(suite.ctx, model.ImageInput{ProductID: uintPtr(a.ID), Image: strPtr("products/a.jpg")})
	require.NoError(suite.T(), err)
	_, err = suite.store.CreateVariant(suite.ctx, model.VariantInput{
		ProductID: uintPtr(b.ID), Name: strPtr("1kg"), SKU: strPtr("SKU-B-KG"), Price: decPtr("20.00"),
	})
	require.NoError(suite.T(), err)
	plan, err := suite.store.CreatePlan(suite.ctx, model.PlanInput{
		Name: strPtr("Monthly"), Price: decPtr("25.00"),
		DeliveryFrequency: freqPtr(model.FrequencyMonthly),
		ProductIDs:        &[]uint{a.ID, other.ID},
	})
	require.NoError(suite.T(), err)

	result, err := suite.store.DeleteCategory(suite.ctx, c.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), []uint{a.ID, b.ID}, result.Products)
	require.Equal(suite.T(), 1, result.Variants)
	require.Equal(suite.T(), 1, result.Images)

	view := suite.store.View()
	_, ok := view.ProductBySlug("a")
	require.False(suite.T(), ok)
	_, ok = view.ProductBySlug("b")
	require.False(suite.T(), ok)
	_, ok = view.Category(c.ID)
	require.False(suite.T(), ok)
	require.Empty(suite.T(), view.Images())
	require.Empty(suite.T(), view.Variants())
	require.Equal(suite.T(), []uint{other.ID}, view.PlanProductIDs(plan.ID))

	_, err = suite.store.DecrementProductStock(suite.ctx, a.ID, 1)
	suite.requireKind(err, apperror.KindNotFound)

	// freed identifiers can be reused
	suite.category("Coffee", "coffee")
	suite.product(keep.ID, "a", "SKU-A", 1)
}

func (suite *StoreTestSuite) TestPositionOrdering() {
	c := suite.category("Coffee", "coffee")
	p := suite.product(c.ID, "house", "SKU-1", 1)
	for _, pos := range []int{2, 0, 2, 1} {
		_, err := suite.store.CreateImage(suite.ctx, model.ImageInput{
			ProductID: uintPtr(p.ID), Image: strPtr("img.jpg"), Position: intPtr(pos),
		})
		require.NoError(suite.T(), err)
	}
	images := suite.store.View().ListImagesByProduct(p.ID)
	var order []uint
	for _, img := range images {
		order = append(order, img.ID)
	}
	require.Equal(suite.T(), []uint{2, 4, 1, 3}, order)
}

func (suite *StoreTestSuite) TestPlanProducts() {
	c := suite.category("Coffee", "coffee")
	a := suite.product(c.ID, "a", "SKU-A", 1)
	b := suite.product(c.ID, "b", "SKU-B", 1)

	_, err := suite.store.CreatePlan(suite.ctx, model.PlanInput{
		Name: strPtr("Weekly"), Price: decPtr("9.00"),
		DeliveryFrequency: freqPtr("daily"), ProductIDs: &[]uint{a.ID},
	})
	suite.requireKind(err, apperror.KindValidation)

	_, err = suite.store.CreatePlan(suite.ctx, model.PlanInput{
		Name: strPtr("Weekly"), Price: decPtr("9.00"),
		DeliveryFrequency: freqPtr(model.FrequencyWeekly), ProductIDs: &[]uint{a.ID, 99},
	})
	suite.requireKind(err, apperror.KindReference)

	plan, err := suite.store.CreatePlan(suite.ctx, model.PlanInput{
		Name: strPtr("Weekly"), Price: decPtr("9.00"),
		DeliveryFrequency: freqPtr(model.FrequencyWeekly), ProductIDs: &[]uint{b.ID, a.ID, b.ID},
	})
	require.NoError(suite.T(), err)
	require.True(suite.T(), plan.IsActive)
	require.Equal(suite.T(), []uint{a.ID, b.ID}, suite.store.View().PlanProductIDs(plan.ID))

	_, err = suite.store.UpdatePlan(suite.ctx, plan.ID, model.PlanInput{IsActive: boolPtr(false)}, true)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), []uint{a.ID, b.ID}, suite.store.View().PlanProductIDs(plan.ID))

	_, err = suite.store.DeleteProduct(suite.ctx, a.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), []uint{b.ID}, suite.store.View().PlanProductIDs(plan.ID))

	require.NoError(suite.T(), suite.store.DeletePlan(suite.ctx, plan.ID))
	_, ok := suite.store.View().Plan(plan.ID)
	require.False(suite.T(), ok)
}

func freqPtr(f model.DeliveryFrequency) *model.DeliveryFrequency { return &f }

func TestFailedPersistLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	p := &mockPersister{}
	p.On("Apply", mock.Anything, mock.Anything).Return(nil).Times(2)
	p.On("Apply", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	s := New(p, nil)
	c, err := s.CreateCategory(ctx, model.CategoryInput{Name: strPtr("Coffee"), Slug: strPtr("coffee")})
	require.NoError(t, err)
	prod, err := s.CreateProduct(ctx, model.ProductInput{
		Name: strPtr("House"), Slug: strPtr("house"), SKU: strPtr("H-1"),
		Price: decPtr("10.00"), CategoryID: uintPtr(c.ID), StockQuantity: intPtr(5),
	})
	require.NoError(t, err)

	_, err = s.DeleteCategory(ctx, c.ID)
	require.Error(t, err)
	require.Equal(t, apperror.KindInternal, apperror.KindOf(err))

	_, err = s.DecrementProductStock(ctx, prod.ID, 2)
	require.Error(t, err)

	view := s.View()
	_, ok := view.Category(c.ID)
	require.True(t, ok)
	got, ok := view.Product(prod.ID)
	require.True(t, ok)
	require.Equal(t, 5, got.StockQuantity)

	_, err = s.CreateCategory(ctx, model.CategoryInput{Name: strPtr("Gear"), Slug: strPtr("gear")})
	require.Error(t, err)
	_, ok = s.View().CategoryBySlug("gear")
	require.False(t, ok)
	p.AssertExpectations(t)
}

func TestCascadeChangesetOrder(t *testing.T) {
	ctx := context.Background()
	p := &mockPersister{}
	var captured *Changeset
	p.On("Apply", mock.Anything, mock.MatchedBy(func(cs *Changeset) bool {
		if len(cs.Deletes) > 0 {
			captured = cs
		}
		return true
	})).Return(nil)

	s := New(p, nil)
	c, err := s.CreateCategory(ctx, model.CategoryInput{Name: strPtr("Coffee"), Slug: strPtr("coffee")})
	require.NoError(t, err)
	prod, err := s.CreateProduct(ctx, model.ProductInput{
		Name: strPtr("House"), Slug: strPtr("house"), SKU: strPtr("H-1"),
		Price: decPtr("10.00"), CategoryID: uintPtr(c.ID),
	})
	require.NoError(t, err)
	_, err = s.CreateImage(ctx, model.ImageInput{ProductID: uintPtr(prod.ID), Image: strPtr("a.jpg")})
	require.NoError(t, err)
	_, err = s.CreateVariant(ctx, model.VariantInput{
		ProductID: uintPtr(prod.ID), Name: strPtr("1kg"), SKU: strPtr("H-1-KG"), Price: decPtr("30.00"),
	})
	require.NoError(t, err)

	_, err = s.DeleteCategory(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, captured)
	require.Len(t, captured.Deletes, 4)
	require.IsType(t, &model.ProductImage{}, captured.Deletes[0])
	require.IsType(t, &model.ProductVariant{}, captured.Deletes[1])
	require.IsType(t, &model.Product{}, captured.Deletes[2])
	require.IsType(t, &model.Category{}, captured.Deletes[3])
}

func TestLoadHydratesSequencesAndStock(t *testing.T) {
	ctx := context.Background()
	p := &mockPersister{}
	p.On("Load", mock.Anything).Return(&Dataset{
		Categories: []model.Category{{ID: 3, Name: "Coffee", Slug: "coffee", IsActive: true}},
		Products: []model.Product{{
			ID: 8, Name: "House", Slug: "house", SKU: "H-1", CategoryID: 3,
			Price: decimal.RequireFromString("10.00"), ProductType: model.ProductTypeBean,
			Status: model.StatusActive, TrackInventory: true, StockQuantity: 4,
		}},
		Plans:        []model.SubscriptionPlan{{ID: 2, Name: "Monthly", DeliveryFrequency: model.FrequencyMonthly}},
		PlanProducts: []model.PlanProduct{{PlanID: 2, ProductID: 8}},
	}, nil)
	p.On("Apply", mock.Anything, mock.Anything).Return(nil)

	s := New(p, nil)
	require.NoError(t, s.Load(ctx))

	got, ok := s.View().ProductBySlug("house")
	require.True(t, ok)
	require.Equal(t, 4, got.StockQuantity)
	require.Equal(t, []uint{8}, s.View().PlanProductIDs(2))

	c, err := s.CreateCategory(ctx, model.CategoryInput{Name: strPtr("Gear"), Slug: strPtr("gear")})
	require.NoError(t, err)
	require.Equal(t, uint(4), c.ID)

	qty, err := s.DecrementProductStock(ctx, 8, 4)
	require.NoError(t, err)
	require.Equal(t, 0, qty)
	p.AssertCalled(t, "Apply", mock.Anything, &Changeset{Stock: []StockChange{{Target: StockProduct, ID: 8, Quantity: 0}}})
}
