package journal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"satchel.ai/internal/inventory"
)

type namedItem struct {
	id     string
	weight int
}

func (i *namedItem) Weight() int                  { return i.weight }
func (i *namedItem) Category() inventory.Category { return nil }
func (i *namedItem) String() string               { return i.id }

type memSink struct {
	entries []Entry
	err     error
}

func (s *memSink) Write(e Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func ops(entries []Entry) []Op {
	out := make([]Op, len(entries))
	for i, e := range entries {
		out[i] = e.Op
	}
	return out
}

func TestRecorder_RecordsOpsAndOverweight(t *testing.T) {
	inv, err := inventory.NewWeighted(5)
	if err != nil {
		t.Fatalf("new weighted: %v", err)
	}
	sink := &memSink{}
	r := NewRecorder("hero", inv, sink)
	ingot := &namedItem{id: "IRON_INGOT", weight: 3}

	if err := r.AddItem(ingot, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.AddItem(ingot, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.RemoveItem(ingot, 5); !errors.Is(err, inventory.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	got := ops(sink.entries)
	want := []Op{OpAdd, OpOverweight, OpAdd, OpRemove}
	if len(got) != len(want) {
		t.Fatalf("ops: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops: got %v want %v", got, want)
		}
	}

	ow := sink.entries[1]
	if ow.Item != "IRON_INGOT" || ow.Weight != 3 || ow.MaxWeight != 5 || ow.Count != 1 {
		t.Fatalf("unexpected overweight entry %+v", ow)
	}
	if sink.entries[2].Weight != 6 {
		t.Fatalf("add entry should carry the weight after the add, got %d", sink.entries[2].Weight)
	}
	if sink.entries[3].Error == "" {
		t.Fatalf("failed remove should record its error")
	}
	seen := map[string]bool{}
	for _, e := range sink.entries {
		if e.ID == "" || seen[e.ID] || e.Inventory != "hero" || e.Time.IsZero() {
			t.Fatalf("bad entry envelope %+v", e)
		}
		seen[e.ID] = true
	}

	r.Close()
	_ = inv.RemoveItem(ingot, 2)
	_ = inv.AddItem(ingot, 2)
	if len(sink.entries) != 4 {
		t.Fatalf("closed recorder should not record inner notifications, got %d entries", len(sink.entries))
	}
}

func TestRecorder_RecordsLimitedDrops(t *testing.T) {
	inv, _ := inventory.NewWeighted(1)
	sink := &memSink{}
	r := NewRecorder("mule", inventory.NewLimited(inv), sink)

	if err := r.AddItem(&namedItem{id: "ANVIL", weight: 40}, 1); err != nil {
		t.Fatalf("dropped add should not error: %v", err)
	}
	if len(sink.entries) != 1 || sink.entries[0].Op != OpDrop || sink.entries[0].Item != "ANVIL" {
		t.Fatalf("expected a single drop entry, got %+v", sink.entries)
	}
	if len(r.Items()) != 0 {
		t.Fatalf("drop must not add anything")
	}
}

func TestRecorder_SinkErrorDoesNotFailInventory(t *testing.T) {
	inv, _ := inventory.NewWeighted(10)
	boom := errors.New("disk full")
	r := NewRecorder("hero", inv, &memSink{err: boom})
	it := &namedItem{id: "LOG", weight: 1}
	if err := r.AddItem(it, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !r.HasItem(it, 2) {
		t.Fatalf("add should apply even when the sink fails")
	}
	if !errors.Is(r.Err(), boom) {
		t.Fatalf("expected sink error kept, got %v", r.Err())
	}
}

func TestItemID(t *testing.T) {
	if ItemID(nil) != "" {
		t.Fatalf("nil item should have an empty id")
	}
	if ItemID(&namedItem{id: "LOG"}) != "LOG" {
		t.Fatalf("expected String() to name the item")
	}
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "inventory")
	inv, _ := inventory.NewWeighted(2)
	r := NewRecorder("hero", inv, w)
	at := time.Date(2024, 3, 9, 14, 59, 59, 0, time.UTC)
	r.now = func() time.Time { return at }
	it := &namedItem{id: "STONE", weight: 3}
	_ = r.AddItem(it, 1)
	_ = r.RemoveItem(it, 1)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if r.Err() != nil {
		t.Fatalf("sink error: %v", r.Err())
	}

	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other-2024-01-01-00.jsonl.zst"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := ListFiles(dir, "inventory")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := filepath.Join(dir, "inventory-2024-03-09-14.jsonl.zst")
	if len(files) != 1 || files[0] != want {
		t.Fatalf("expected %s, got %v", want, files)
	}
	entries, err := ReadFile(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := ops(entries)
	if len(got) != 3 || got[0] != OpOverweight || got[1] != OpAdd || got[2] != OpRemove {
		t.Fatalf("unexpected ops read back: %v", got)
	}
	if entries[1].Item != "STONE" || entries[1].Weight != 3 || entries[2].Weight != 0 {
		t.Fatalf("unexpected entries read back: %+v", entries)
	}
	if !entries[0].Time.Equal(at) {
		t.Fatalf("entry time not preserved: %v", entries[0].Time)
	}
}

func TestWriter_RotatesOnEntryHour(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "inventory")
	h14 := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	h15 := h14.Add(time.Hour)

	for _, e := range []Entry{
		{Time: h14, Op: OpAdd, Item: "LOG", Count: 1},
		{Time: h15, Op: OpAdd, Item: "LOG", Count: 2},
		// A late entry goes back to its own hour.
		{Time: h14.Add(10 * time.Minute), Op: OpRemove, Item: "LOG", Count: 1},
	} {
		if err := w.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(dir, "inventory")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0] != w.Path(h14) || files[1] != w.Path(h15) {
		t.Fatalf("expected one file per hour, got %v", files)
	}
	first, err := ReadFile(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := ops(first); len(got) != 2 || got[0] != OpAdd || got[1] != OpRemove {
		t.Fatalf("14h segment: unexpected ops %v", got)
	}
	second, err := ReadFile(files[1])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(second) != 1 || second[0].Count != 2 {
		t.Fatalf("15h segment: unexpected entries %+v", second)
	}
}

func TestWriter_ReopenAppends(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)
	for i := 1; i <= 2; i++ {
		w := NewWriter(dir, "inventory")
		if err := w.Write(Entry{Time: at, Op: OpAdd, Count: i}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
	entries, err := ReadFile(NewWriter(dir, "inventory").Path(at))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 || entries[0].Count != 1 || entries[1].Count != 2 {
		t.Fatalf("expected both sessions in one segment, got %+v", entries)
	}
}
