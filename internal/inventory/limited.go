package inventory

// Limited wraps a Weighted inventory and drops any add the wrapped inventory
// could not bear. The capacity gate checks a single unit of the item, not the
// requested count; when one unit fits the whole count is forwarded.
type Limited struct {
	inner Weighted
}

var _ Weighted = (*Limited)(nil)

func NewLimited(inner Weighted) *Limited {
	return &Limited{inner: inner}
}

// Unwrap returns the decorated inventory.
func (l *Limited) Unwrap() Weighted { return l.inner }

func (l *Limited) AddItem(item Item, count int) error {
	_, err := l.Added(item, count)
	return err
}

// Added is AddItem that also reports whether the add reached the decorated
// inventory.
func (l *Limited) Added(item Item, count int) (bool, error) {
	if !l.inner.CanBearItem(item, 1) {
		return false, nil
	}
	if err := l.inner.AddItem(item, count); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Limited) Items() []Pile                         { return l.inner.Items() }
func (l *Limited) HasItem(item Item, minCount int) bool  { return l.inner.HasItem(item, minCount) }
func (l *Limited) RemoveItem(item Item, count int) error { return l.inner.RemoveItem(item, count) }
func (l *Limited) MaxWeight() int                        { return l.inner.MaxWeight() }
func (l *Limited) CurrentWeight() int                    { return l.inner.CurrentWeight() }

func (l *Limited) CanBearItem(item Item, count int) bool {
	return l.inner.CanBearItem(item, count)
}

func (l *Limited) OnOverweight(fn OverweightFunc) func() {
	return l.inner.OnOverweight(fn)
}
