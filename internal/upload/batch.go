// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package upload

import (
	"log/slog"
	"mime/multipart"
)

// Batch tracks the files saved for one request so they can be removed
// again when the request fails after saving them.
type Batch struct {
	store  *Store
	logger *slog.Logger
	urls   []string
}

// NewBatch starts an empty batch.
func (s *Store) NewBatch(logger *slog.Logger) *Batch {
	return &Batch{store: s, logger: logger}
}

// Save stores fh and records its URL in the batch.
func (b *Batch) Save(fh *multipart.FileHeader, kind Kind) (string, error) {
	url, err := b.store.Save(fh, kind)
	if err != nil {
		return "", err
	}
	b.urls = append(b.urls, url)
	return url, nil
}

// SaveAll stores every file in order. On error the files saved so far stay
// in the batch for Discard.
func (b *Batch) SaveAll(files []*multipart.FileHeader, kind Kind) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := b.Save(fh, kind)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// URLs returns the URLs saved so far.
func (b *Batch) URLs() []string {
	return append([]string(nil), b.urls...)
}

// Discard removes every file saved through the batch.
func (b *Batch) Discard() {
	for _, url := range b.urls {
		if err := b.store.Remove(url); err != nil {
			b.logger.Warn("discarding upload failed", "url", url, "error", err)
		}
	}
	b.urls = nil
}
