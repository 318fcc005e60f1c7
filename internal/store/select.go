package store

import (
	"fmt"
	"strings"
)

// StateFilterAll disables state filtering.
const StateFilterAll = "ALL"

// Selection is the immutable per-run configuration for picking a shard's
// slice of the master table.
type Selection struct {
	ShardIndex  int
	TotalShards int
	// MaxPerShard caps how many units one run of a shard processes. Units
	// beyond the cap stay pending for a later run; this is throughput
	// bounding, not an error.
	MaxPerShard int
	// States filters target states. Empty or containing StateFilterAll
	// means no filter. Matching is case-insensitive exact match.
	States []string
}

func (s Selection) validate() error {
	if s.TotalShards < 1 {
		return fmt.Errorf("total shards must be >= 1, got %d", s.TotalShards)
	}
	if s.ShardIndex < 0 || s.ShardIndex >= s.TotalShards {
		return fmt.Errorf("shard index %d out of range [0,%d)", s.ShardIndex, s.TotalShards)
	}
	return nil
}

func (s Selection) stateSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.States))
	for _, st := range s.States {
		st = strings.ToUpper(strings.TrimSpace(st))
		if st == "" {
			continue
		}
		if st == StateFilterAll {
			return nil
		}
		set[st] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// ParseStates splits a TARGET_STATE value ("ALL", "NY", "NY,CA") into a
// state list for Selection.
func ParseStates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SelectWorkUnits reads the master table and returns the units this shard
// owns: pending rows, state-filtered, partitioned into TotalShards
// contiguous equal ranges (ceil(n/totalShards) wide), shard ShardIndex's
// range, capped to MaxPerShard from the range start.
func SelectWorkUnits(masterPath string, sel Selection) ([]WorkUnit, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}

	t, err := Load(masterPath)
	if err != nil {
		return nil, err
	}

	states := sel.stateSet()
	var pending []WorkUnit
	for _, r := range t.rows {
		if !r.Pending() {
			continue
		}
		if states != nil {
			if _, ok := states[r.State]; !ok {
				continue
			}
		}
		pending = append(pending, WorkUnit{Zipcode: r.Zipcode, State: r.State})
	}

	start, end := shardRange(len(pending), sel.TotalShards, sel.ShardIndex)
	units := pending[start:end]
	if sel.MaxPerShard > 0 && len(units) > sel.MaxPerShard {
		units = units[:sel.MaxPerShard]
	}

	out := make([]WorkUnit, len(units))
	copy(out, units)
	return out, nil
}

// shardRange computes the contiguous slice [start,end) of n elements owned
// by shard i of total shards, each ceil(n/total) wide. The union over all
// shards covers [0,n) exactly once.
func shardRange(n, total, i int) (start, end int) {
	size := (n + total - 1) / total
	start = i * size
	if start > n {
		start = n
	}
	end = start + size
	if end > n {
		end = n
	}
	return start, end
}
