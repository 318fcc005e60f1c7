package store

import "fmt"

// Merge concatenates shard output tables into one table at outPath, keeping
// a single header. Later shards win on duplicate keys, though keys are
// disjoint by construction when the inputs come from one partitioned run.
func Merge(outPath string, shardPaths ...string) error {
	if len(shardPaths) == 0 {
		return fmt.Errorf("merge: no shard tables given")
	}

	merged := &Table{path: outPath, index: make(map[rowKey]int)}
	for _, p := range shardPaths {
		t, err := Load(p)
		if err != nil {
			return fmt.Errorf("merge %s: %w", p, err)
		}
		for _, r := range t.rows {
			k := keyOf(r.Zipcode, r.State)
			if i, ok := merged.index[k]; ok {
				merged.rows[i] = r
				continue
			}
			merged.index[k] = len(merged.rows)
			merged.rows = append(merged.rows, r)
		}
	}
	return merged.Save()
}
