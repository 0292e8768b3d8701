// Package policy decides which catalog operations a caller may run and which entities the
// caller may observe.
package policy

import (
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
)

// Role is the caller classification supplied by the identity layer
type Role int

const (
	Anonymous Role = iota
	Authenticated
	Staff
)

func (r Role) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Staff:
		return "staff"
	default:
		return "anonymous"
	}
}

// ParseRole maps an identity claim onto a role. Unknown non-empty roles are authenticated.
func ParseRole(claim string) Role {
	switch strings.ToLower(strings.TrimSpace(claim)) {
	case "":
		return Anonymous
	case "staff", "admin", "administrator":
		return Staff
	default:
		return Authenticated
	}
}

// Operation is a catalog action
type Operation string

const (
	OpList           Operation = "list"
	OpRetrieve       Operation = "retrieve"
	OpCreate         Operation = "create"
	OpUpdate         Operation = "update"
	OpPartialUpdate  Operation = "partial_update"
	OpDelete         Operation = "delete"
	OpFeatured       Operation = "featured"
	OpNewArrivals    Operation = "new_arrivals"
	OpByCategory     Operation = "by_category"
	OpDecrementStock Operation = "decrement_stock"
	OpIncrementStock Operation = "increment_stock"
)

// IsWrite reports whether op mutates the catalog
func (op Operation) IsWrite() bool {
	switch op {
	case OpCreate, OpUpdate, OpPartialUpdate, OpDelete, OpDecrementStock, OpIncrementStock:
		return true
	}
	return false
}

// Resource is a catalog entity type
type Resource string

const (
	ResourceCategory Resource = "category"
	ResourceProduct  Resource = "product"
	ResourceImage    Resource = "product_image"
	ResourceVariant  Resource = "product_variant"
	ResourcePlan     Resource = "subscription_plan"
)

// Grant is what a role may do with a resource
type Grant uint8

const (
	Deny Grant = iota
	Read
	ReadWrite
)

var table = map[Resource][3]Grant{
	//                 anonymous authenticated staff
	ResourceCategory: {Read, Read, ReadWrite},
	ResourceProduct:  {Read, Read, ReadWrite},
	ResourceImage:    {Deny, Deny, ReadWrite},
	ResourceVariant:  {Deny, Deny, ReadWrite},
	ResourcePlan:     {Read, Read, ReadWrite},
}

// operations lists what each resource supports beyond plain CRUD
var operations = map[Resource][]Operation{
	ResourceProduct: {OpFeatured, OpNewArrivals, OpByCategory, OpDecrementStock, OpIncrementStock},
	ResourceVariant: {OpDecrementStock, OpIncrementStock},
}

func supports(res Resource, op Operation) bool {
	switch op {
	case OpList, OpRetrieve, OpCreate, OpUpdate, OpPartialUpdate, OpDelete:
		return true
	}
	for _, extra := range operations[res] {
		if extra == op {
			return true
		}
	}
	return false
}

// GrantFor looks up the table entry for role and res
func GrantFor(role Role, res Resource) Grant {
	grants, ok := table[res]
	if !ok || role < Anonymous || role > Staff {
		return Deny
	}
	return grants[role]
}

// Authorize fails with a forbidden error when role may not run op on res
func Authorize(role Role, op Operation, res Resource) error {
	if _, ok := table[res]; !ok {
		return apperror.BadRequest("resource", "unknown resource %q", res)
	}
	if !supports(res, op) {
		return apperror.BadRequest("operation", "%s does not support %s", res, op)
	}

	grant := GrantFor(role, res)
	if op.IsWrite() {
		if grant < ReadWrite {
			return apperror.Forbidden("%s callers may not %s %s", role, op, res)
		}
		return nil
	}
	if grant < Read {
		return apperror.Forbidden("%s callers may not read %s", role, res)
	}
	return nil
}

// Scope narrows the entities a role observes. Staff see everything; everyone else sees
// active categories, active plans and active products of active categories.
type Scope struct {
	staff bool
}

// ScopeFor returns the visibility scope of role
func ScopeFor(role Role) Scope {
	return Scope{staff: role == Staff}
}

// Unrestricted reports whether the scope hides nothing
func (s Scope) Unrestricted() bool {
	return s.staff
}

// Category reports whether c is visible
func (s Scope) Category(c model.Category) bool {
	return s.staff || c.IsActive
}

// Product reports whether p, owned by category, is visible
func (s Scope) Product(p model.Product, category model.Category) bool {
	return s.staff || (p.Status == model.StatusActive && category.IsActive)
}

// Plan reports whether plan is visible
func (s Scope) Plan(plan model.SubscriptionPlan) bool {
	return s.staff || plan.IsActive
}
