// Package script runs YAML-described sequences of inventory operations, for
// balancing capacities and item weights without a running game.
package script

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"satchel.ai/internal/inventory"
)

const (
	OpAdd           = "add"
	OpRemove        = "remove"
	OpHas           = "has"
	OpCanBear       = "can_bear"
	OpRaiseCapacity = "raise_capacity"
)

type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Count defaults to 1; for raise_capacity it is the
// capacity delta and for has the minimum count.
type Step struct {
	Op    string `yaml:"op"`
	Item  string `yaml:"item,omitempty"`
	Count *int   `yaml:"count,omitempty"`
}

func (s Step) N() int {
	if s.Count == nil {
		return 1
	}
	return *s.Count
}

func (s Step) String() string {
	if s.Item == "" {
		return fmt.Sprintf("%s %d", s.Op, s.N())
	}
	return fmt.Sprintf("%s %s x%d", s.Op, s.Item, s.N())
}

// Result.OK is the answer for has and can_bear, and Err == nil for the
// other ops.
type Result struct {
	Step Step
	OK   bool
	Err  error
}

type Resolver func(id string) (inventory.Item, error)

type capacityRaiser interface {
	IncreaseMaxWeight(delta int) error
}

type unwrapper interface {
	Unwrap() inventory.Weighted
}

func Load(path string) (Script, error) {
	var s Script
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Script) Validate() error {
	for i := range s.Steps {
		st := &s.Steps[i]
		st.Op = strings.ToLower(strings.TrimSpace(st.Op))
		st.Item = strings.TrimSpace(st.Item)
		switch st.Op {
		case OpAdd, OpRemove, OpHas, OpCanBear:
			if st.Item == "" {
				return fmt.Errorf("step %d: %s needs an item", i+1, st.Op)
			}
		case OpRaiseCapacity:
			if st.Item != "" {
				return fmt.Errorf("step %d: raise_capacity takes no item", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown op %q", i+1, st.Op)
		}
	}
	return nil
}

// Run applies steps in order. A failing step is reported in its Result and
// does not stop the run.
func Run(inv inventory.Weighted, resolve Resolver, steps []Step) []Result {
	out := make([]Result, 0, len(steps))
	for _, st := range steps {
		out = append(out, runStep(inv, resolve, st))
	}
	return out
}

func runStep(inv inventory.Weighted, resolve Resolver, st Step) Result {
	res := Result{Step: st}
	if st.Op == OpRaiseCapacity {
		r := findRaiser(inv)
		if r == nil {
			res.Err = fmt.Errorf("%s: inventory has no adjustable capacity", st.Op)
			return res
		}
		res.Err = r.IncreaseMaxWeight(st.N())
		res.OK = res.Err == nil
		return res
	}

	item, err := resolve(st.Item)
	if err != nil {
		res.Err = err
		return res
	}
	switch st.Op {
	case OpAdd:
		res.Err = inv.AddItem(item, st.N())
		res.OK = res.Err == nil
	case OpRemove:
		res.Err = inv.RemoveItem(item, st.N())
		res.OK = res.Err == nil
	case OpHas:
		res.OK = inv.HasItem(item, st.N())
	case OpCanBear:
		res.OK = inv.CanBearItem(item, st.N())
	default:
		res.Err = fmt.Errorf("unknown op %q", st.Op)
	}
	return res
}

func findRaiser(inv inventory.Weighted) capacityRaiser {
	for inv != nil {
		if r, ok := inv.(capacityRaiser); ok {
			return r
		}
		u, ok := inv.(unwrapper)
		if !ok {
			return nil
		}
		inv = u.Unwrap()
	}
	return nil
}
