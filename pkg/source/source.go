// Package source defines the contract every vendor connector implements and
// the registry the CLI uses to look connectors up by vendor id.
package source

import (
	"context"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source is the minimum contract a vendor connector implements. All methods
// are read-only against the vendor API.
type Source interface {
	// Name returns the vendor id, e.g. "asana" or "monday".
	Name() string

	// Readiness verifies credentials and API reachability without touching
	// any data. A nil error means the migration can start.
	Readiness(ctx context.Context) error

	// Discover counts everything the migration would touch.
	Discover(ctx context.Context) (*model.Discovery, error)

	// Members lists the people to invite into the target organization.
	Members(ctx context.Context) ([]model.Member, error)

	// Templates extracts and transforms the vendor's process definitions.
	Templates(ctx context.Context) ([]model.Template, error)
}

// GroupLister is implemented by connectors whose platform has teams. Sources
// without the capability simply skip the groups phase.
type GroupLister interface {
	Groups(ctx context.Context) ([]model.Group, error)
}

// InstanceLister is implemented by connectors that can export running or
// completed instances of their templates.
type InstanceLister interface {
	Instances(ctx context.Context) ([]model.Instance, error)
}
