// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads key material from a directory of plain-text files.
// Each file holds one secret: the file name is the key name and the
// trimmed contents are the value. The audit seal key is the only secret
// ray-engine reads today.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultDir is where secrets are read from when no directory is given.
const DefaultDir = ".secrets"

// Load reads every file in dir. A missing directory yields an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("skipping unreadable secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// SealKey returns the audit seal key stored under name in dir, or nil
// when it is not configured. Pairs signed without a key carry no seal.
func SealKey(dir, name string, log *zap.Logger) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	all, err := Load(dir, log)
	if err != nil {
		return nil, err
	}
	if v, ok := all[name]; ok {
		return []byte(v), nil
	}
	return nil, nil
}
