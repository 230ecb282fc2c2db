package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"satchel.ai/internal/catalogs"
	"satchel.ai/internal/inventory"
	"satchel.ai/internal/journal"
	"satchel.ai/internal/script"
	"satchel.ai/internal/tuning"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		scriptPath = flag.String("script", "", "path to a step script (default: <configs>/scripts/expedition.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory (journal lives under it)")
		name       = flag.String("name", "player_1", "inventory name recorded in the journal")
		noJournal  = flag.Bool("no_journal", false, "do not write the journal even if tuning enables it")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[satchel] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	logger.Printf("catalogs: %d items (digest %.12s), %d categories (digest %.12s)",
		len(cats.Items.Defs), cats.Items.Digest, len(cats.Categories.Defs), cats.Categories.Digest)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	sp := strings.TrimSpace(*scriptPath)
	if sp == "" {
		sp = filepath.Join(*configDir, "scripts", "expedition.yaml")
	}
	sc, err := script.Load(sp)
	if err != nil {
		logger.Fatalf("load script: %v", err)
	}

	journalDir := ""
	if tune.Journal.Enabled && !*noJournal {
		journalDir = filepath.Join(*dataDir, tune.Journal.Dir)
	}
	s, err := build(cats, tune, *name, journalDir)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Printf("journal: %v", err)
		}
	}()
	if journalDir != "" {
		logger.Printf("journal: %s/%s-*.jsonl.zst", journalDir, tune.Journal.Prefix)
	}

	s.inv.OnOverweight(func(ev inventory.Overweight) {
		logger.Printf("OVERWEIGHT: adding %d %s to %d/%d", ev.Count, journal.ItemID(ev.Item), ev.Weight, ev.MaxWeight)
	})

	logger.Printf("running %q: %d steps, capacity %d, limited=%v", sc.Name, len(sc.Steps), tune.CarryCapacity, tune.LimitAdds)
	failed := 0
	for i, res := range script.Run(s.inv, cats.Resolve, sc.Steps) {
		switch {
		case res.Err != nil:
			failed++
			logger.Printf("step %d %s: error: %v", i+1, res.Step, res.Err)
		default:
			logger.Printf("step %d %s: ok=%v weight=%d/%d", i+1, res.Step, res.OK, s.inv.CurrentWeight(), s.inv.MaxWeight())
		}
	}

	logger.Printf("contents: weight %d/%d", s.base.CurrentWeight(), s.base.MaxWeight())
	for _, line := range contentLines(cats, s.base) {
		logger.Print(line)
	}
	if failed > 0 {
		logger.Printf("%d step(s) failed", failed)
	}
}

// setup is a seeded inventory and the layers wrapped around it. inv is what
// callers drive; base is the Generalist underneath.
type setup struct {
	base    *inventory.Generalist
	inv     inventory.Weighted
	closers []func() error
}

// Close releases layers outermost first and returns the first error.
func (s *setup) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// build seeds a Generalist with the starter items, then wraps it in Limited
// when tuning asks for it and in a journal Recorder when journalDir is set.
func build(cats *catalogs.Catalogs, tune tuning.Tuning, name, journalDir string) (*setup, error) {
	base, err := inventory.NewWeighted(tune.CarryCapacity)
	if err != nil {
		return nil, fmt.Errorf("carry capacity: %w", err)
	}
	for _, id := range tune.StarterItemIDs() {
		it, ok := cats.Item(id)
		if !ok {
			return nil, fmt.Errorf("starter item %s: not in catalog", id)
		}
		if err := base.AddItem(it, tune.StarterItems[id]); err != nil {
			return nil, fmt.Errorf("starter item %s: %w", id, err)
		}
	}

	s := &setup{base: base, inv: base}
	if tune.LimitAdds {
		s.inv = inventory.NewLimited(s.inv)
	}
	if journalDir != "" {
		w := journal.NewWriter(journalDir, tune.Journal.Prefix)
		rec := journal.NewRecorder(name, s.inv, w)
		s.closers = append(s.closers, w.Close, func() error {
			rec.Close()
			if err := rec.Err(); err != nil {
				return fmt.Errorf("write failed: %w", err)
			}
			return nil
		})
		s.inv = rec
	}
	return s, nil
}

// contentLines lists inv grouped by category in catalog order, then
// uncategorized items.
func contentLines(cats *catalogs.Catalogs, inv inventory.Categorized) []string {
	var lines []string
	add := func(label string, piles []inventory.Pile) {
		for _, p := range piles {
			lines = append(lines, fmt.Sprintf("  %-12s %-16s x%-3d weight %d", label, itemLabel(p.Item), p.Count, p.Item.Weight()*p.Count))
		}
	}
	for _, id := range cats.Categories.Order {
		def := cats.Categories.Defs[id]
		if !inv.HasCategory(def) {
			continue
		}
		label := def.ID
		if def.Title != "" {
			label = def.Title
		}
		add(label, inv.ItemsIn(def))
	}
	if inv.HasCategory(nil) {
		add("(none)", inv.ItemsIn(nil))
	}
	return lines
}

func itemLabel(it inventory.Item) string {
	if d, ok := it.(*catalogs.ItemDef); ok {
		return d.Name()
	}
	return journal.ItemID(it)
}
