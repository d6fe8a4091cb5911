// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kriete/station-series/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads credentials and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyUsername, "  observer \n")
				writeFile(t, dir, KeyPassword, "s3cret")
				return dir
			},
			want: map[string]string{KeyUsername: "observer", KeyPassword: "s3cret"},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			want: map[string]string{},
		},
		{
			name: "skips blank files, dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyUsername, "observer")
				writeFile(t, dir, KeyPassword, " \n\t")
				writeFile(t, dir, ".gitkeep", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: map[string]string{KeyUsername: "observer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := t.TempDir()
	writeFile(t, dir, KeyUsername, "observer")
	bad := filepath.Join(dir, KeyPassword)
	require.NoError(t, os.WriteFile(bad, []byte("s3cret"), 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	got, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "observer", got[KeyUsername])
	assert.NotContains(t, got, KeyPassword)
}

func TestApplyHTTP(t *testing.T) {
	var cfg types.HTTPConfig
	assert.False(t, ApplyHTTP(map[string]string{KeyUsername: "observer"}, &cfg))
	assert.Empty(t, cfg.Username)

	assert.True(t, ApplyHTTP(map[string]string{KeyUsername: "observer", KeyPassword: "s3cret"}, &cfg))
	assert.Equal(t, "observer", cfg.Username)
	assert.Equal(t, "s3cret", cfg.Password)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
