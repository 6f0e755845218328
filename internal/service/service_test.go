// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"sync"
)

// recordingRemover records removed URLs and optionally fails.
type recordingRemover struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (r *recordingRemover) Remove(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, url)
	return r.err
}

func (r *recordingRemover) Removed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

var errRemove = errors.New("permission denied")
