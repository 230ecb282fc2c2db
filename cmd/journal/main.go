package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"satchel.ai/internal/journal"
)

func main() {
	var (
		dir       = flag.String("dir", "", "journal directory containing <prefix>-*.jsonl.zst")
		prefix    = flag.String("prefix", "inventory", "journal file prefix")
		inventory = flag.String("inventory", "", "only show entries for this inventory (optional)")
		verbose   = flag.Bool("v", false, "print every entry")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "missing -dir")
		os.Exit(2)
	}

	files, err := journal.ListFiles(*dir, *prefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list journal:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no %s-*.jsonl.zst files in %s\n", *prefix, *dir)
		os.Exit(1)
	}

	counts := map[journal.Op]int{}
	failed := 0
	total := 0
	for _, path := range files {
		entries, err := journal.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read journal:", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if *inventory != "" && e.Inventory != *inventory {
				continue
			}
			total++
			counts[e.Op]++
			if e.Error != "" {
				failed++
			}
			switch {
			case e.Op == journal.OpOverweight:
				fmt.Printf("%s %s OVERWEIGHT: +%d %s at %d/%d\n", e.Time.Format("15:04:05.000"), e.Inventory, e.Count, e.Item, e.Weight, e.MaxWeight)
			case *verbose:
				line := fmt.Sprintf("%s %s %s %s x%d -> %d/%d", e.Time.Format("15:04:05.000"), e.Inventory, e.Op, e.Item, e.Count, e.Weight, e.MaxWeight)
				if e.Error != "" {
					line += " error: " + e.Error
				}
				fmt.Println(line)
			}
		}
	}

	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, string(op))
	}
	sort.Strings(ops)
	fmt.Printf("files=%d entries=%d failed=%d\n", len(files), total, failed)
	for _, op := range ops {
		fmt.Printf("  %-10s %d\n", op, counts[journal.Op(op)])
	}
}
