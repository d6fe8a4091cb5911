// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads catalog server credentials from a directory of
// plain-text files. The filename is the key and the trimmed contents are
// the value, so credentials never have to live in the config file or the
// environment.
//
// Recognized keys: thredds-username, thredds-password.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kriete/station-series/internal/logging"
	"github.com/kriete/station-series/pkg/types"
)

// Key names for THREDDS basic auth.
const (
	KeyUsername = "thredds-username"
	KeyPassword = "thredds-password"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets"

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty map. Files that cannot be read are logged and skipped.
func Load(dir string, logger *slog.Logger) (map[string]string, error) {
	logger = logging.OrDiscard(logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", "key", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// ApplyHTTP copies the THREDDS credentials into cfg. Basic auth is only
// enabled when both halves are present; a lone username or password is
// ignored and reported as false.
func ApplyHTTP(s map[string]string, cfg *types.HTTPConfig) bool {
	user, pass := s[KeyUsername], s[KeyPassword]
	if user == "" || pass == "" {
		return false
	}
	cfg.Username, cfg.Password = user, pass
	return true
}
