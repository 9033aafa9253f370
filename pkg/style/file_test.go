package style

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "yaml", raw: "formatting:\n  heading_style: markdown\n", want: "markdown"},
		{name: "json", raw: `{"formatting": {"heading_style": "bold"}}`, want: "bold"},
		{name: "wrapped", raw: `{"profile": {"formatting": {"heading_style": "caps"}}}`, want: "caps"},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a mapping", raw: "- a\n- b\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProfile([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.section("formatting")["heading_style"])
		})
	}
}

func TestLoadProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	raw, err := EncodeProfile(DefaultProfile())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	for _, s := range RequiredSections {
		assert.Contains(t, p, s)
	}

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
