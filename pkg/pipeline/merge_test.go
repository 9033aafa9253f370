package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name   string
		base   map[string]any
		update map[string]any
		want   map[string]any
	}{
		{
			name:   "nested maps merge",
			base:   map[string]any{"a": map[string]any{"y": 2}},
			update: map[string]any{"a": map[string]any{"x": 1}},
			want:   map[string]any{"a": map[string]any{"x": 1, "y": 2}},
		},
		{
			name:   "scalar replaces",
			base:   map[string]any{"a": 1, "b": "keep"},
			update: map[string]any{"a": 2},
			want:   map[string]any{"a": 2, "b": "keep"},
		},
		{
			name:   "map replaces scalar",
			base:   map[string]any{"a": "flat"},
			update: map[string]any{"a": map[string]any{"x": 1}},
			want:   map[string]any{"a": map[string]any{"x": 1}},
		},
		{
			name:   "list replaces list",
			base:   map[string]any{"a": []any{1, 2}},
			update: map[string]any{"a": []any{3}},
			want:   map[string]any{"a": []any{3}},
		},
		{
			name:   "nil base",
			base:   nil,
			update: map[string]any{"k": "v"},
			want:   map[string]any{"k": "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepMerge(tt.base, tt.update))
		})
	}
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": map[string]any{"y": 2}}
	update := map[string]any{"a": map[string]any{"x": 1}}

	out := DeepMerge(base, update)
	out["a"].(map[string]any)["z"] = 3

	assert.Equal(t, map[string]any{"a": map[string]any{"y": 2}}, base)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}}, update)
}

func TestDisjointUpdatesCommute(t *testing.T) {
	base := map[string]any{"seed": 1}
	u1 := map[string]any{"tags": []any{"a"}, "tag_generation_status": "success"}
	u2 := map[string]any{"resources": map[string]any{"go": []any{}}}
	u3 := map[string]any{"rewritten_notes": "text"}

	orders := [][]map[string]any{
		{u1, u2, u3}, {u3, u2, u1}, {u2, u1, u3}, {u3, u1, u2},
	}
	var first map[string]any
	for i, order := range orders {
		got := base
		for _, u := range order {
			got = DeepMerge(got, u)
		}
		if i == 0 {
			first = got
			continue
		}
		assert.Equal(t, first, got)
	}
}

func TestAssertDisjoint(t *testing.T) {
	assert.NoError(t, AssertDisjoint(Update{"a": 1}, Update{"b": 2}, Update{"c": 3}))

	err := AssertDisjoint(Update{"a": 1, "shared": 1}, Update{"shared": 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverlappingUpdate))
	assert.Contains(t, err.Error(), "shared")
}

func TestApplyMergesTypedUpdates(t *testing.T) {
	state := &State{
		InputSource:  Sources{"raw"},
		StyleProfile: map[string]any{"tone": map[string]any{"formality": "formal"}},
	}

	next, err := Apply(state, Update{
		KeyTags:      []string{"go", "pipelines"},
		KeyTagStatus: StatusSuccess,
		KeyStyleProfile: map[string]any{
			"tone": map[string]any{"voice": "active"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "pipelines"}, next.Tags)
	assert.Equal(t, StatusSuccess, next.TagGenerationStatus)
	assert.Equal(t, map[string]any{"formality": "formal", "voice": "active"}, next.StyleProfile["tone"])
	// original untouched
	assert.Nil(t, state.Tags)
	assert.Equal(t, map[string]any{"formality": "formal"}, state.StyleProfile["tone"])
}

func TestSourcesAcceptsStringOrList(t *testing.T) {
	var single Sources
	require.NoError(t, single.UnmarshalJSON([]byte(`"https://example.com"`)))
	assert.Equal(t, Sources{"https://example.com"}, single)

	var many Sources
	require.NoError(t, many.UnmarshalJSON([]byte(`["a.txt","b.pdf"]`)))
	assert.Equal(t, Sources{"a.txt", "b.pdf"}, many)

	var bad Sources
	assert.Error(t, bad.UnmarshalJSON([]byte(`42`)))
}
