package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"satchel.ai/internal/inventory"
)

type Op string

const (
	OpAdd        Op = "add"
	OpRemove     Op = "remove"
	OpDrop       Op = "drop"
	OpOverweight Op = "overweight"
)

// Entry is one journal line. Weight is the total after the op, except for
// overweight entries where it is the total before the add that caused them.
type Entry struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Inventory string    `json:"inventory"`
	Op        Op        `json:"op"`
	Item      string    `json:"item"`
	Count     int       `json:"count"`
	Weight    int       `json:"weight"`
	MaxWeight int       `json:"max_weight"`
	Error     string    `json:"error,omitempty"`
}

// Sink receives journal entries. Writer is the file-backed one.
type Sink interface {
	Write(e Entry) error
}

// adder is implemented by inventory.Limited.
type adder interface {
	Added(item inventory.Item, count int) (bool, error)
}

// Recorder is a Weighted decorator that writes an Entry for every add,
// remove and overweight notification of the wrapped inventory. Sink errors
// never fail the inventory call; the first one is kept for Err.
type Recorder struct {
	name   string
	inner  inventory.Weighted
	sink   Sink
	cancel func()
	err    error
	now    func() time.Time
}

var _ inventory.Weighted = (*Recorder)(nil)

func NewRecorder(name string, inner inventory.Weighted, sink Sink) *Recorder {
	r := &Recorder{name: name, inner: inner, sink: sink, now: time.Now}
	r.cancel = inner.OnOverweight(func(ev inventory.Overweight) {
		r.write(Entry{
			Op:        OpOverweight,
			Item:      ItemID(ev.Item),
			Count:     ev.Count,
			Weight:    ev.Weight,
			MaxWeight: ev.MaxWeight,
		})
	})
	return r
}

// Close stops recording overweight notifications. It does not close the sink.
func (r *Recorder) Close() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Recorder) Err() error { return r.err }

func (r *Recorder) AddItem(item inventory.Item, count int) error {
	op := OpAdd
	var err error
	if a, ok := r.inner.(adder); ok {
		var added bool
		added, err = a.Added(item, count)
		if !added && err == nil {
			op = OpDrop
		}
	} else {
		err = r.inner.AddItem(item, count)
	}
	r.record(op, item, count, err)
	return err
}

func (r *Recorder) RemoveItem(item inventory.Item, count int) error {
	err := r.inner.RemoveItem(item, count)
	r.record(OpRemove, item, count, err)
	return err
}

func (r *Recorder) Items() []inventory.Pile { return r.inner.Items() }
func (r *Recorder) MaxWeight() int          { return r.inner.MaxWeight() }
func (r *Recorder) CurrentWeight() int      { return r.inner.CurrentWeight() }

func (r *Recorder) HasItem(item inventory.Item, minCount int) bool {
	return r.inner.HasItem(item, minCount)
}

func (r *Recorder) CanBearItem(item inventory.Item, count int) bool {
	return r.inner.CanBearItem(item, count)
}

func (r *Recorder) OnOverweight(fn inventory.OverweightFunc) func() {
	return r.inner.OnOverweight(fn)
}

// Unwrap returns the recorded inventory.
func (r *Recorder) Unwrap() inventory.Weighted { return r.inner }

func (r *Recorder) record(op Op, item inventory.Item, count int, err error) {
	e := Entry{
		Op:        op,
		Item:      ItemID(item),
		Count:     count,
		Weight:    r.inner.CurrentWeight(),
		MaxWeight: r.inner.MaxWeight(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	r.write(e)
}

func (r *Recorder) write(e Entry) {
	e.ID = uuid.NewString()
	e.Time = r.now().UTC()
	e.Inventory = r.name
	if err := r.sink.Write(e); err != nil && r.err == nil {
		r.err = err
	}
}

// ItemID names an item for the journal: its String method when it has one.
func ItemID(it inventory.Item) string {
	switch v := it.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
