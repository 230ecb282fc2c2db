package tuning

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	CarryCapacity int            `yaml:"carry_capacity"`
	LimitAdds     bool           `yaml:"limit_adds"`
	StarterItems  map[string]int `yaml:"starter_items,omitempty"`

	Journal Journal `yaml:"journal"`
}

type Journal struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Prefix  string `yaml:"prefix"`
}

func Defaults() Tuning {
	return Tuning{
		CarryCapacity: 50,
		Journal: Journal{
			Dir:    "journal",
			Prefix: "inventory",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	t.Journal.Dir = strings.TrimSpace(t.Journal.Dir)
	t.Journal.Prefix = strings.TrimSpace(t.Journal.Prefix)
	if t.Journal.Dir == "" {
		t.Journal.Dir = "journal"
	}
	if t.Journal.Prefix == "" {
		t.Journal.Prefix = "inventory"
	}
}

func (t Tuning) Validate() error {
	if t.CarryCapacity <= 0 {
		return fmt.Errorf("carry_capacity must be > 0, got %d", t.CarryCapacity)
	}
	for _, id := range t.StarterItemIDs() {
		if n := t.StarterItems[id]; n < 0 {
			return fmt.Errorf("starter_items.%s: negative count %d", id, n)
		}
	}
	if strings.ContainsAny(t.Journal.Prefix, `/\`) {
		return fmt.Errorf("journal.prefix must not contain path separators: %q", t.Journal.Prefix)
	}
	return nil
}

// StarterItemIDs returns the starter item ids sorted, so seeding is
// deterministic.
func (t Tuning) StarterItemIDs() []string {
	ids := make([]string, 0, len(t.StarterItems))
	for id := range t.StarterItems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
