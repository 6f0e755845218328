// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"log/slog"

	"github.com/galeria-cuadros/cuadros/internal/model"
)

// FileRemover deletes a stored upload by its public URL.
type FileRemover interface {
	Remove(url string) error
}

// removeFiles deletes the uploads a committed mutation no longer references.
// Failures are only logged; the orphan sweep collects leftovers.
func removeFiles(files FileRemover, logger *slog.Logger, urls ...string) {
	if files == nil {
		return
	}
	for _, url := range urls {
		if url == "" || url == model.DefaultAvatar {
			continue
		}
		if err := files.Remove(url); err != nil {
			logger.Warn("removing upload failed", "url", url, "error", err)
		}
	}
}
