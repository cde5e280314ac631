package leave

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPE CATALOG
// =============================================================================

// Catalog exposes the leave type configuration and owns its one-time seeding.
type Catalog struct {
	types TypeStore

	// mu guards Seed's check-then-write so concurrent startup paths cannot
	// both observe an empty catalog.
	mu sync.Mutex
}

func NewCatalog(types TypeStore) *Catalog {
	return &Catalog{types: types}
}

// Seed populates the catalog with the given types, or the default set when
// overrides is empty. It writes only if the catalog is currently empty, so
// repeated calls are no-ops.
func (c *Catalog) Seed(ctx context.Context, overrides []LeaveType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.types.ListTypes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seed := overrides
	if len(seed) == 0 {
		seed = DefaultTypes()
	}
	for i := range seed {
		lt := seed[i]
		if lt.CreatedAt.IsZero() {
			lt.CreatedAt = time.Now().UTC()
		}
		if err := c.types.PutType(ctx, &lt); err != nil {
			return err
		}
	}
	return nil
}

// ActiveTypes returns the catalog entries currently available for requests.
func (c *Catalog) ActiveTypes(ctx context.Context) ([]*LeaveType, error) {
	all, err := c.types.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	var active []*LeaveType
	for _, lt := range all {
		if lt.Active {
			active = append(active, lt)
		}
	}
	return active, nil
}

// Type returns the catalog entry or ErrTypeNotFound.
func (c *Catalog) Type(ctx context.Context, id string) (*LeaveType, error) {
	return c.types.GetType(ctx, id)
}

// DefaultTypes is the fixed seed set used when no overrides are configured.
func DefaultTypes() []LeaveType {
	days := func(n int64) *decimal.Decimal {
		d := decimal.NewFromInt(n)
		return &d
	}
	return []LeaveType{
		{
			ID:                "annual",
			Name:              "Annual",
			MaxDaysPerYear:    days(21),
			RequiresApproval:  true,
			AdvanceNoticeDays: 7,
			IsPaid:            true,
			CarryOverAllowed:  true,
			Active:            true,
		},
		{
			ID:               "sick",
			Name:             "Sick",
			MaxDaysPerYear:   days(10),
			RequiresApproval: true,
			IsPaid:           true,
			Active:           true,
		},
		{
			ID:                "personal",
			Name:              "Personal",
			MaxDaysPerYear:    days(5),
			RequiresApproval:  true,
			AdvanceNoticeDays: 2,
			IsPaid:            true,
			Active:            true,
		},
		{
			ID:               "emergency",
			Name:             "Emergency",
			MaxDaysPerYear:   days(3),
			RequiresApproval: false,
			IsPaid:           true,
			Active:           true,
		},
	}
}
