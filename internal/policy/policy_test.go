package policy

import (
	"testing"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, Anonymous, ParseRole(""))
	assert.Equal(t, Staff, ParseRole("admin"))
	assert.Equal(t, Staff, ParseRole(" Staff "))
	assert.Equal(t, Authenticated, ParseRole("customer"))
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name string
		role Role
		op   Operation
		res  Resource
		kind apperror.Kind
		ok   bool
	}{
		{"anonymous lists products", Anonymous, OpList, ResourceProduct, 0, true},
		{"anonymous reads featured", Anonymous, OpFeatured, ResourceProduct, 0, true},
		{"authenticated retrieves plan", Authenticated, OpRetrieve, ResourcePlan, 0, true},
		{"anonymous creates category", Anonymous, OpCreate, ResourceCategory, apperror.KindForbidden, false},
		{"authenticated deletes product", Authenticated, OpDelete, ResourceProduct, apperror.KindForbidden, false},
		{"authenticated patches plan", Authenticated, OpPartialUpdate, ResourcePlan, apperror.KindForbidden, false},
		{"authenticated reads images", Authenticated, OpList, ResourceImage, apperror.KindForbidden, false},
		{"anonymous reads variant", Anonymous, OpRetrieve, ResourceVariant, apperror.KindForbidden, false},
		{"authenticated decrements stock", Authenticated, OpDecrementStock, ResourceProduct, apperror.KindForbidden, false},
		{"staff writes images", Staff, OpUpdate, ResourceImage, 0, true},
		{"staff adjusts variant stock", Staff, OpIncrementStock, ResourceVariant, 0, true},
		{"staff deletes category", Staff, OpDelete, ResourceCategory, 0, true},
		{"featured on categories", Staff, OpFeatured, ResourceCategory, apperror.KindBadRequest, false},
		{"stock on plans", Staff, OpDecrementStock, ResourcePlan, apperror.KindBadRequest, false},
		{"unknown resource", Staff, OpList, Resource("orders"), apperror.KindBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.role, tt.op, tt.res)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestScope(t *testing.T) {
	active := model.Category{ID: 1, IsActive: true}
	hidden := model.Category{ID: 2}

	public := ScopeFor(Authenticated)
	assert.False(t, public.Unrestricted())
	assert.True(t, public.Category(active))
	assert.False(t, public.Category(hidden))
	assert.True(t, public.Product(model.Product{Status: model.StatusActive}, active))
	assert.False(t, public.Product(model.Product{Status: model.StatusDraft}, active))
	assert.False(t, public.Product(model.Product{Status: model.StatusArchived}, active))
	assert.False(t, public.Product(model.Product{Status: model.StatusActive}, hidden))
	assert.False(t, public.Plan(model.SubscriptionPlan{}))

	staff := ScopeFor(Staff)
	assert.True(t, staff.Unrestricted())
	assert.True(t, staff.Category(hidden))
	assert.True(t, staff.Product(model.Product{Status: model.StatusDraft}, hidden))
	assert.True(t, staff.Plan(model.SubscriptionPlan{}))
}
