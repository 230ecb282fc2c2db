package inventory

import "fmt"

// Generalist is the canonical inventory. It keeps at most one pile per item
// and implements Inventory, Categorized and Weighted.
type Generalist struct {
	piles     []Pile
	maxWeight int

	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	fn OverweightFunc
}

var (
	_ Categorized = (*Generalist)(nil)
	_ Weighted    = (*Generalist)(nil)
)

// New returns an empty inventory with no capacity.
func New() *Generalist {
	return &Generalist{}
}

// NewFromItems seeds one unit of each item. Repeated items are merged.
func NewFromItems(items ...Item) *Generalist {
	g := New()
	for _, it := range items {
		g.merge(it, 1)
	}
	return g
}

// NewFromPiles seeds the given piles, merging piles of the same item and
// dropping empty ones.
func NewFromPiles(piles ...Pile) (*Generalist, error) {
	g := New()
	for _, p := range piles {
		if p.Count < 0 {
			return nil, fmt.Errorf("%w: pile count %d is negative", ErrInvalidArgument, p.Count)
		}
		if p.Count == 0 {
			continue
		}
		g.merge(p.Item, p.Count)
	}
	return g, nil
}

// NewWeighted returns an empty inventory that can carry maxWeight, which
// must be positive.
func NewWeighted(maxWeight int) (*Generalist, error) {
	g := New()
	if err := g.IncreaseMaxWeight(maxWeight); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generalist) Items() []Pile {
	out := make([]Pile, len(g.piles))
	copy(out, g.piles)
	return out
}

// Count returns the total number of units held for item, 0 when absent.
func (g *Generalist) Count(item Item) int {
	n := 0
	for _, p := range g.piles {
		if p.Item == item {
			n += p.Count
		}
	}
	return n
}

func (g *Generalist) HasItem(item Item, minCount int) bool {
	return g.Count(item) >= minCount
}

func (g *Generalist) AddItem(item Item, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: cannot add %d items", ErrInvalidArgument, count)
	}
	if count == 0 {
		return nil
	}
	g.checkOverweight(item, count)
	g.merge(item, count)
	return nil
}

func (g *Generalist) RemoveItem(item Item, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: cannot remove %d items", ErrInvalidArgument, count)
	}
	if held := g.Count(item); held < count {
		return fmt.Errorf("%w: insufficient quantity: removing %d but holding %d", ErrInvalidState, count, held)
	}

	remaining := count
	for remaining > 0 {
		i := g.indexOf(item)
		if i < 0 {
			return fmt.Errorf("%w: %d units left to remove with no pile", ErrInvalidState, remaining)
		}
		take := min(remaining, g.piles[i].Count)
		g.piles[i].Count -= take
		remaining -= take
		g.dropEmpty()
	}
	return nil
}

func (g *Generalist) Categories() []Category {
	out := make([]Category, 0, len(g.piles))
	for _, p := range g.piles {
		c := categoryOf(p.Item)
		seen := false
		for _, o := range out {
			if o == c {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, c)
		}
	}
	return out
}

func (g *Generalist) HasCategory(c Category) bool {
	for _, p := range g.piles {
		if categoryOf(p.Item) == c {
			return true
		}
	}
	return false
}

func (g *Generalist) ItemsIn(c Category) []Pile {
	out := []Pile{}
	for _, p := range g.piles {
		if categoryOf(p.Item) == c {
			out = append(out, p)
		}
	}
	return out
}

func (g *Generalist) MaxWeight() int { return g.maxWeight }

func (g *Generalist) CurrentWeight() int {
	total := 0
	for _, p := range g.piles {
		total += weightOf(p.Item) * p.Count
	}
	return total
}

// IncreaseMaxWeight adds delta to the capacity. delta may be negative as long
// as the capacity stays positive relative to the current contents.
func (g *Generalist) IncreaseMaxWeight(delta int) error {
	if delta+g.CurrentWeight() <= 0 {
		return fmt.Errorf("%w: max weight must be positive (delta %d, current weight %d)", ErrInvalidArgument, delta, g.CurrentWeight())
	}
	g.maxWeight += delta
	return nil
}

func (g *Generalist) CanBearItem(item Item, count int) bool {
	return g.maxWeight > 0 && g.maxWeight-g.CurrentWeight() >= weightOf(item)*count
}

func (g *Generalist) OnOverweight(fn OverweightFunc) func() {
	if fn == nil {
		return func() {}
	}
	g.nextID++
	id := g.nextID
	g.listeners = append(g.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range g.listeners {
			if l.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

// checkOverweight runs against the weight before the add is applied.
func (g *Generalist) checkOverweight(item Item, count int) {
	weight := g.CurrentWeight()
	if weight > g.maxWeight {
		return
	}
	if g.CanBearItem(item, count) {
		return
	}
	ev := Overweight{Item: item, Count: count, Weight: weight, MaxWeight: g.maxWeight}
	ls := append([]listener(nil), g.listeners...)
	for _, l := range ls {
		l.fn(ev)
	}
}

func (g *Generalist) merge(item Item, count int) {
	if i := g.indexOf(item); i >= 0 {
		g.piles[i].Count += count
		return
	}
	g.piles = append(g.piles, Pile{Item: item, Count: count})
}

func (g *Generalist) indexOf(item Item) int {
	for i, p := range g.piles {
		if p.Item == item {
			return i
		}
	}
	return -1
}

func (g *Generalist) dropEmpty() {
	kept := g.piles[:0]
	for _, p := range g.piles {
		if p.Count > 0 {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(g.piles); i++ {
		g.piles[i] = Pile{}
	}
	g.piles = kept
}
