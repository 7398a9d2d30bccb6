package domain

import "time"

// ResourceType distinguishes schedulable units
type ResourceType string

const (
	ResourceTypeStaff ResourceType = "staff"
	ResourceTypeRoom  ResourceType = "room"
)

// Resource is a schedulable unit owned by a tenant. Provisioning happens
// outside the engine; the booking flow reads resources only.
type Resource struct {
	ID       int64
	TenantID int64
	Type     ResourceType
	TZ       string // fallback timezone, mandatory at setup time
	Capacity int    // >= 1; overlap exclusion is single-occupancy regardless
	Name     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tenant carries the engine-visible slice of a tenant: its fallback timezone.
type Tenant struct {
	ID   int64
	Name string
	TZ   string // mandatory at setup time

	CreatedAt time.Time
	UpdatedAt time.Time
}
