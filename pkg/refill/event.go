package refill

// ConsumableKind identifies the substance an item use drains.
type ConsumableKind string

// Recognised water kinds. Every other kind is left alone.
const (
	KindWater     ConsumableKind = "water"
	KindSaltWater ConsumableKind = "salt water"
)

// IsWater reports whether k is one of the water kinds.
func (k ConsumableKind) IsWater() bool {
	return k == KindWater || k == KindSaltWater
}

// Actor is the player owning an inventory.
type Actor struct {
	ID string `json:"id"`
}

// Container is an inventory container. Nested containers (the contents of a
// bucket, a backpack) point back to the item they belong to via Parent.
type Container struct {
	Parent *Item  `json:"parent,omitempty"`
	Owner  *Actor `json:"owner,omitempty"`
}

// Item is an item instance. Liquids sit inside their holder, so the water in
// a bucket has the bucket as Parent.
type Item struct {
	Type      string     `json:"type"`
	Parent    *Item      `json:"parent,omitempty"`
	Container *Container `json:"container,omitempty"`
}

// maxNesting bounds the container walk so a malformed (cyclic) item graph
// cannot hang the hook.
const maxNesting = 64

// RootContainer walks up through nested containers and returns the top-level
// one, or nil when the item is not in any container.
func (i *Item) RootContainer() *Container {
	if i == nil {
		return nil
	}
	root := i.Container
	for depth := 0; root != nil && root.Parent != nil && root.Parent.Container != nil; depth++ {
		if depth >= maxNesting {
			return nil
		}
		root = root.Parent.Container
	}
	return root
}

// ConsumptionEvent is one "substance used" notification from the host.
type ConsumptionEvent struct {
	Kind   ConsumableKind `json:"kind"`
	Item   *Item          `json:"item"`
	Amount int            `json:"amount"`
}
