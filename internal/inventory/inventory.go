// Package inventory models a game character's carried items as piles of
// discrete item types, with optional category views and a weight capacity.
//
// Inventories are not safe for concurrent use. They are meant to be driven
// from a single simulation step.
package inventory

import "errors"

var (
	// ErrInvalidArgument wraps rejections of negative counts and capacities.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState wraps removals of more units than are held.
	ErrInvalidState = errors.New("invalid state")
)

// Item is anything that can be carried. Items are compared with ==, so the
// dynamic type must be comparable; pointer types give reference identity.
// A nil Item is a valid key with zero weight and no category.
type Item interface {
	Weight() int
	Category() Category
}

// Category is an opaque, comparable grouping key. nil is a valid category.
type Category interface{}

// Pile is a count of one item.
type Pile struct {
	Item  Item
	Count int
}

// Inventory holds piles of items, at most one pile per item.
type Inventory interface {
	// Items returns the piles in first-seen order. The slice is a copy.
	Items() []Pile
	HasItem(item Item, minCount int) bool
	AddItem(item Item, count int) error
	RemoveItem(item Item, count int) error
}

// Categorized groups the held items by Item.Category.
type Categorized interface {
	Inventory
	Categories() []Category
	HasCategory(c Category) bool
	ItemsIn(c Category) []Pile
}

// OverweightFunc receives the add that pushed an inventory past capacity.
type OverweightFunc func(Overweight)

// Overweight describes the add that triggered the notification. Weight is
// the total weight before the add was applied.
type Overweight struct {
	Item      Item
	Count     int
	Weight    int
	MaxWeight int
}

// Weighted tracks the total weight of its items against a capacity.
type Weighted interface {
	Inventory
	MaxWeight() int
	CurrentWeight() int
	CanBearItem(item Item, count int) bool
	// OnOverweight registers fn and returns a func that unregisters it.
	OnOverweight(fn OverweightFunc) (cancel func())
}

func weightOf(it Item) int {
	if it == nil {
		return 0
	}
	return it.Weight()
}

func categoryOf(it Item) Category {
	if it == nil {
		return nil
	}
	return it.Category()
}
