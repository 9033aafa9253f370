package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrOverlappingUpdate is returned when two parallel updates write the same top-level key.
var ErrOverlappingUpdate = errors.New("parallel updates overlap")

// DeepMerge returns a new mapping with update layered over base.
// Nested mappings present on both sides are merged recursively; any other
// value in update replaces the one in base. Neither input is modified.
func DeepMerge(base, update map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(update))
	for k, v := range base {
		out[k] = copyValue(v)
	}
	for k, v := range update {
		if nextMap, ok := v.(map[string]any); ok {
			if prevMap, ok := out[k].(map[string]any); ok {
				out[k] = DeepMerge(prevMap, nextMap)
				continue
			}
		}
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepMerge(nil, t)
	case []any:
		c := make([]any, len(t))
		for i := range t {
			c[i] = copyValue(t[i])
		}
		return c
	default:
		return v
	}
}

// AssertDisjoint fails when any top-level key appears in more than one update.
func AssertDisjoint(updates ...Update) error {
	owner := map[string]int{}
	var clashes []string
	for i, u := range updates {
		for k := range u {
			if prev, seen := owner[k]; seen && prev != i {
				clashes = append(clashes, k)
				continue
			}
			owner[k] = i
		}
	}
	if len(clashes) > 0 {
		sort.Strings(clashes)
		return fmt.Errorf("%w: %s", ErrOverlappingUpdate, strings.Join(clashes, ", "))
	}
	return nil
}

// Apply deep-merges the updates over the state in order and returns a new State.
func Apply(state *State, updates ...Update) (*State, error) {
	merged, err := state.ToMap()
	if err != nil {
		return nil, err
	}
	for _, u := range updates {
		norm, err := toMap(u)
		if err != nil {
			return nil, fmt.Errorf("normalize update: %w", err)
		}
		merged = DeepMerge(merged, norm)
	}
	return FromMap(merged)
}
