package refill

import (
	"log"

	"github.com/infinitewater/bucket/pkg/permission"
)

// Registry is the set of container types eligible for infinite refill.
type Registry interface {
	Contains(itemType string) bool
}

// Reason names the check that decided an event.
type Reason string

const (
	ReasonNotWater        Reason = "not_water"
	ReasonNoParent        Reason = "no_parent"
	ReasonNotRefillable   Reason = "not_refillable"
	ReasonNoRootContainer Reason = "no_root_container"
	ReasonNoOwner         Reason = "no_owner"
	ReasonNoPermission    Reason = "no_permission"
	ReasonRefilled        Reason = "refilled"
)

// Rule decides whether a water use drains its container.
type Rule struct {
	registry    Registry
	permissions permission.Checker
}

// NewRule creates a rule over the given registry and permission checker.
func NewRule(registry Registry, permissions permission.Checker) *Rule {
	return &Rule{
		registry:    registry,
		permissions: permissions,
	}
}

// Decide returns the amount that should actually be consumed: the requested
// amount, or 0 when the use is refilled for free.
func (r *Rule) Decide(event ConsumptionEvent) int {
	amount, _ := r.Explain(event)
	return amount
}

// Explain is Decide plus the reason for the outcome.
// Checks run in order and the first failing one wins.
func (r *Rule) Explain(event ConsumptionEvent) (int, Reason) {
	if !event.Kind.IsWater() {
		return event.Amount, ReasonNotWater
	}

	item := event.Item
	if item == nil || item.Parent == nil || item.Parent.Type == "" {
		return event.Amount, ReasonNoParent
	}

	if !r.registry.Contains(item.Parent.Type) {
		return event.Amount, ReasonNotRefillable
	}

	root := item.RootContainer()
	if root == nil {
		return event.Amount, ReasonNoRootContainer
	}

	if root.Owner == nil {
		return event.Amount, ReasonNoOwner
	}

	allowed, err := r.permissions.HasPermission(root.Owner.ID, permission.Use)
	if err != nil {
		log.Printf("[HOOK] permission check failed for actor=%s: %v", root.Owner.ID, err)
		return event.Amount, ReasonNoPermission
	}
	if !allowed {
		return event.Amount, ReasonNoPermission
	}

	return 0, ReasonRefilled
}
