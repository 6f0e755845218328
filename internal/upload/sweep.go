// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/galeria-cuadros/cuadros/internal/model"
)

// DefaultSweepGrace protects files saved by requests still in flight.
const DefaultSweepGrace = time.Hour

// ReferenceLister returns the set of upload URLs stored in the database.
type ReferenceLister func(ctx context.Context) (map[string]struct{}, error)

// Sweep removes upload files no row references and whose modification time
// is older than grace. Leftover temporary files are removed under the same
// rule. It returns the number of files removed.
func (s *Store) Sweep(ctx context.Context, refs ReferenceLister, grace time.Duration) (int, error) {
	referenced, err := refs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing referenced uploads: %w", err)
	}
	cutoff := s.now().Add(-grace)

	removed := 0
	for _, kind := range Kinds {
		entries, err := os.ReadDir(filepath.Join(s.dir, string(kind)))
		if err != nil {
			return removed, fmt.Errorf("reading %s uploads: %w", kind, err)
		}
		for _, e := range entries {
			if ctx.Err() != nil {
				return removed, ctx.Err()
			}
			if !e.Type().IsRegular() {
				continue
			}
			url := path.Join(URLPrefix, string(kind), e.Name())
			if _, ok := referenced[url]; ok || url == model.DefaultAvatar {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(s.dir, string(kind), e.Name())); err != nil && !os.IsNotExist(err) {
				return removed, fmt.Errorf("removing %s: %w", url, err)
			}
			removed++
		}
	}
	return removed, nil
}

