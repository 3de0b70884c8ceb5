package refill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infinitewater/bucket/pkg/permission"
	"github.com/infinitewater/bucket/pkg/registry"
)

// MockChecker is a mock implementation of permission.Checker
type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) HasPermission(actorID, name string) (bool, error) {
	args := m.Called(actorID, name)
	return args.Bool(0), args.Error(1)
}

// waterIn builds a water item held by a container of the given type, sitting in
// the inventory of owner (nil for an unowned inventory).
func waterIn(containerType string, owner *Actor) *Item {
	inventory := &Container{Owner: owner}
	holder := &Item{Type: containerType, Container: inventory}
	contents := &Container{Parent: holder}
	return &Item{Type: "water", Parent: holder, Container: contents}
}

func defaultRegistry() *registry.Registry {
	return registry.New([]string{"bucket.water", "water jug", "small water bottle", "waterskin"})
}

func TestRule_RefillsPermittedBucket(t *testing.T) {
	checker := new(MockChecker)
	checker.On("HasPermission", "player", permission.Use).Return(true, nil)

	rule := NewRule(defaultRegistry(), checker)
	event := ConsumptionEvent{Kind: KindWater, Item: waterIn("bucket.water", &Actor{ID: "player"}), Amount: 50}

	amount, reason := rule.Explain(event)

	assert.Equal(t, 0, amount)
	assert.Equal(t, ReasonRefilled, reason)
	checker.AssertExpectations(t)
}

func TestRule_UnlistedContainer(t *testing.T) {
	checker := new(MockChecker)
	rule := NewRule(defaultRegistry(), checker)
	event := ConsumptionEvent{Kind: KindWater, Item: waterIn("unlisted_container", &Actor{ID: "player"}), Amount: 50}

	amount, reason := rule.Explain(event)

	assert.Equal(t, 50, amount)
	assert.Equal(t, ReasonNotRefillable, reason)
	checker.AssertNotCalled(t, "HasPermission", mock.Anything, mock.Anything)
}

func TestRule_SaltWater(t *testing.T) {
	checker := new(MockChecker)
	checker.On("HasPermission", "player", permission.Use).Return(true, nil)

	rule := NewRule(defaultRegistry(), checker)
	event := ConsumptionEvent{Kind: KindSaltWater, Item: waterIn("water jug", &Actor{ID: "player"}), Amount: 7}

	assert.Equal(t, 0, rule.Decide(event))
}

func TestRule_IgnoresOtherKinds(t *testing.T) {
	checker := new(MockChecker)
	rule := NewRule(defaultRegistry(), checker)

	for _, kind := range []ConsumableKind{"", "lowgradefuel", "water.salt", "Water", "blood"} {
		for _, amount := range []int{0, 1, 50, 1000} {
			event := ConsumptionEvent{Kind: kind, Item: waterIn("bucket.water", &Actor{ID: "player"}), Amount: amount}
			got, reason := rule.Explain(event)
			assert.Equal(t, amount, got, "kind=%q", kind)
			assert.Equal(t, ReasonNotWater, reason, "kind=%q", kind)
		}
	}
	checker.AssertNotCalled(t, "HasPermission", mock.Anything, mock.Anything)
}

func TestRule_ZeroForAnyAmountWhenEligible(t *testing.T) {
	checker := new(MockChecker)
	checker.On("HasPermission", "player", permission.Use).Return(true, nil)
	rule := NewRule(defaultRegistry(), checker)

	for _, amount := range []int{0, 1, 50, 250, 1 << 20} {
		event := ConsumptionEvent{Kind: KindWater, Item: waterIn("waterskin", &Actor{ID: "player"}), Amount: amount}
		assert.Equal(t, 0, rule.Decide(event), "amount=%d", amount)
	}
}

func TestRule_MissingPieces(t *testing.T) {
	owner := &Actor{ID: "player"}

	noRoot := waterIn("bucket.water", owner)
	noRoot.Container = nil

	unnamedParent := waterIn("bucket.water", owner)
	unnamedParent.Parent.Type = ""

	noParent := waterIn("bucket.water", owner)
	noParent.Parent = nil

	tests := []struct {
		name   string
		item   *Item
		reason Reason
	}{
		{"nil item", nil, ReasonNoParent},
		{"no parent", noParent, ReasonNoParent},
		{"parent without type", unnamedParent, ReasonNoParent},
		{"no root container", noRoot, ReasonNoRootContainer},
		{"unowned container", waterIn("bucket.water", nil), ReasonNoOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockChecker)
			rule := NewRule(defaultRegistry(), checker)

			amount, reason := rule.Explain(ConsumptionEvent{Kind: KindWater, Item: tt.item, Amount: 50})

			assert.Equal(t, 50, amount)
			assert.Equal(t, tt.reason, reason)
			checker.AssertNotCalled(t, "HasPermission", mock.Anything, mock.Anything)
		})
	}
}

func TestRule_NoPermission(t *testing.T) {
	checker := new(MockChecker)
	checker.On("HasPermission", "player", permission.Use).Return(false, nil)

	rule := NewRule(defaultRegistry(), checker)
	event := ConsumptionEvent{Kind: KindWater, Item: waterIn("bucket.water", &Actor{ID: "player"}), Amount: 50}

	amount, reason := rule.Explain(event)

	assert.Equal(t, 50, amount)
	assert.Equal(t, ReasonNoPermission, reason)
	checker.AssertExpectations(t)
}

func TestRule_PermissionErrorIsDenial(t *testing.T) {
	checker := new(MockChecker)
	checker.On("HasPermission", "player", permission.Use).Return(false, errors.New("connection refused"))

	rule := NewRule(defaultRegistry(), checker)
	event := ConsumptionEvent{Kind: KindWater, Item: waterIn("bucket.water", &Actor{ID: "player"}), Amount: 50}

	amount, reason := rule.Explain(event)

	assert.Equal(t, 50, amount)
	assert.Equal(t, ReasonNoPermission, reason)
}

func TestRule_NestedContainerUsesRootOwner(t *testing.T) {
	checker := new(MockChecker)
	checker.On("HasPermission", "player", permission.Use).Return(true, nil)

	// player inventory → backpack → bucket → water
	inventory := &Container{Owner: &Actor{ID: "player"}}
	backpack := &Item{Type: "smallbackpack", Container: inventory}
	backpackContents := &Container{Parent: backpack}
	bucket := &Item{Type: "bucket.water", Container: backpackContents}
	water := &Item{Type: "water", Parent: bucket, Container: &Container{Parent: bucket}}

	rule := NewRule(defaultRegistry(), checker)

	assert.Equal(t, 0, rule.Decide(ConsumptionEvent{Kind: KindWater, Item: water, Amount: 50}))
	checker.AssertExpectations(t)
}

func TestRule_OnlyRootOwnerCounts(t *testing.T) {
	checker := new(MockChecker)

	// Inner container claims an owner, the root inventory does not
	inventory := &Container{}
	bucket := &Item{Type: "bucket.water", Container: inventory}
	water := &Item{Type: "water", Parent: bucket, Container: &Container{Parent: bucket, Owner: &Actor{ID: "player"}}}

	rule := NewRule(defaultRegistry(), checker)
	amount, reason := rule.Explain(ConsumptionEvent{Kind: KindWater, Item: water, Amount: 50})

	assert.Equal(t, 50, amount)
	assert.Equal(t, ReasonNoOwner, reason)
}

func TestRule_ReloadedRegistry(t *testing.T) {
	checker := new(MockChecker)
	checker.On("HasPermission", "player", permission.Use).Return(true, nil)

	reg := registry.New([]string{"bucket.water"})
	rule := NewRule(reg, checker)
	event := ConsumptionEvent{Kind: KindWater, Item: waterIn("waterskin", &Actor{ID: "player"}), Amount: 50}

	assert.Equal(t, 50, rule.Decide(event))

	reg.Replace([]string{"bucket.water", "waterskin"})
	assert.Equal(t, 0, rule.Decide(event))
}

func TestItem_RootContainer(t *testing.T) {
	var nilItem *Item
	assert.Nil(t, nilItem.RootContainer())

	loose := &Item{Type: "bucket.water"}
	assert.Nil(t, loose.RootContainer())

	inventory := &Container{Owner: &Actor{ID: "player"}}
	water := waterIn("bucket.water", nil)
	water.Parent.Container = inventory
	assert.Same(t, inventory, water.RootContainer())
}

func TestItem_RootContainerCycle(t *testing.T) {
	a := &Item{Type: "a"}
	b := &Item{Type: "b"}
	a.Container = &Container{Parent: b}
	b.Container = &Container{Parent: a}

	assert.Nil(t, a.RootContainer())
}
