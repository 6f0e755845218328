// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upload stores user-supplied images under the uploads directory
// and serves them back by public URL.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	cimaging "github.com/galeria-cuadros/cuadros/internal/imaging"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/util"
)

// URLPrefix is the path under which uploads are served.
const URLPrefix = "/uploads"

// Upload limits.
const (
	DefaultMaxBytes = 5 << 20
	DefaultMaxDim   = 1920
	AvatarDim       = 256
)

// Kind is the subdirectory an upload is stored in.
type Kind string

// Upload kinds.
const (
	KindCuadro   Kind = "cuadros"
	KindCategory Kind = "categorias"
	KindAvatar   Kind = "avatars"
)

// Kinds lists every upload subdirectory.
var Kinds = []Kind{KindCuadro, KindCategory, KindAvatar}

// ErrNotUpload is returned by Remove for URLs outside the uploads tree.
var ErrNotUpload = errors.New("not an upload URL")

var formats = map[string]string{
	"image/jpeg": cimaging.FormatJPEG,
	"image/png":  cimaging.FormatPNG,
	"image/gif":  cimaging.FormatGIF,
	"image/webp": cimaging.FormatWebP,
}

// Config configures a Store.
type Config struct {
	Dir      string
	MaxBytes int64
	MaxDim   int
}

// Store writes normalized images to disk.
type Store struct {
	dir      string
	maxBytes int64
	maxDim   int

	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// New creates a Store rooted at cfg.Dir, creating the kind subdirectories
// and the default avatar when missing.
func New(cfg Config) (*Store, error) {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxDim <= 0 {
		cfg.MaxDim = DefaultMaxDim
	}
	abs, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving uploads dir: %w", err)
	}
	for _, k := range Kinds {
		if err := os.MkdirAll(filepath.Join(abs, string(k)), 0o750); err != nil {
			return nil, fmt.Errorf("creating uploads dir: %w", err)
		}
	}

	s := &Store{dir: abs, maxBytes: cfg.MaxBytes, maxDim: cfg.MaxDim, now: time.Now}
	if err := s.ensureDefaultAvatar(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the absolute uploads directory.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the per-file size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates, normalizes and stores one uploaded file and returns its
// public URL. The declared content type is ignored; the format is sniffed
// from the file content.
func (s *Store) Save(fh *multipart.FileHeader, kind Kind) (string, error) {
	if fh.Size > s.maxBytes {
		return "", s.tooLarge(fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Persistence("open upload", err)
	}
	defer func() { _ = f.Close() }()

	return s.SaveReader(f, fh.Filename, kind)
}

// SaveReader is Save for an already opened file.
func (s *Store) SaveReader(r io.Reader, filename string, kind Kind) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", apperr.Persistence("read upload", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", s.tooLarge(filename)
	}

	mt := mimetype.Detect(data)
	format, ok := formats[mt.String()]
	if !ok {
		return "", apperr.Validation(
			fmt.Sprintf("El archivo %q no es una imagen válida (JPEG, PNG, GIF o WebP).", filepath.Base(filename)),
			map[string]string{"imagen": "mime"})
	}

	opts := cimaging.Options{Mode: cimaging.ModeFit, MaxDim: s.maxDim}
	if kind == KindAvatar {
		opts = cimaging.Options{Mode: cimaging.ModeSquare, MaxDim: AvatarDim}
	}
	img, err := cimaging.Normalize(data, format, opts)
	if err != nil {
		return "", apperr.Validation(
			fmt.Sprintf("No se pudo procesar la imagen %q.", filepath.Base(filename)),
			map[string]string{"imagen": "decode"})
	}

	name := s.filename(filename, kind, img.Format)
	if err := s.write(kind, name, img.Data); err != nil {
		return "", apperr.Persistence("write upload", err)
	}
	return path.Join(URLPrefix, string(kind), name), nil
}

// Remove deletes the file behind an upload URL. Missing files are not an
// error.
func (s *Store) Remove(url string) error {
	full, err := s.pathFor(url)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// pathFor maps an upload URL onto the filesystem.
func (s *Store) pathFor(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok {
		return "", ErrNotUpload
	}
	full, err := util.JoinWithin(s.dir, rel)
	if err != nil {
		return "", ErrNotUpload
	}
	return full, nil
}

// filename builds "<unix-millis>-<slug>.<ext>", prefixed with "avatar-" for
// avatars. Millisecond stamps are kept strictly increasing within the
// process so two uploads never share a name.
func (s *Store) filename(original string, kind Kind, format string) string {
	stem, _ := util.SplitFilename(original)
	if stem == "" {
		stem = "imagen"
	}

	s.mu.Lock()
	stamp := s.now().UnixMilli()
	if stamp <= s.last {
		stamp = s.last + 1
	}
	s.last = stamp
	s.mu.Unlock()

	name := fmt.Sprintf("%d-%s.%s", stamp, stem, format)
	if kind == KindAvatar {
		name = "avatar-" + name
	}
	return name
}

// write stores data through a temporary file renamed into place.
func (s *Store) write(kind Kind, name string, data []byte) error {
	dir := filepath.Join(s.dir, string(kind))
	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *Store) tooLarge(filename string) error {
	return apperr.Validation(
		fmt.Sprintf("El archivo %q supera el tamaño máximo de %s.",
			filepath.Base(filename), humanize.IBytes(uint64(s.maxBytes))),
		map[string]string{"imagen": "size"})
}

// ensureDefaultAvatar writes a neutral placeholder at model.DefaultAvatar
// unless a file is already there.
func (s *Store) ensureDefaultAvatar() error {
	full, err := s.pathFor(model.DefaultAvatar)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err == nil {
		return nil
	}

	var buf bytes.Buffer
	placeholder := imaging.New(AvatarDim, AvatarDim, color.NRGBA{R: 0x52, G: 0x52, B: 0x5b, A: 0xff})
	if err := imaging.Encode(&buf, placeholder, imaging.PNG); err != nil {
		return fmt.Errorf("encoding default avatar: %w", err)
	}
	if err := s.write(KindAvatar, filepath.Base(full), buf.Bytes()); err != nil {
		return fmt.Errorf("writing default avatar: %w", err)
	}
	return nil
}
