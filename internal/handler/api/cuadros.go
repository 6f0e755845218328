// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/handler"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/upload"
)

// ListCuadros handles GET /api/cuadros, optionally filtered by
// ?categoria=<name>.
func (h *Handler) ListCuadros(w http.ResponseWriter, r *http.Request) {
	items, err := h.cuadros.List(r.Context(), r.URL.Query().Get("categoria"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, items)
}

// GetCuadro handles GET /api/cuadros/{id}.
func (h *Handler) GetCuadro(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	c, err := h.cuadros.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, c)
}

// CreateCuadro handles POST /api/cuadros/crear.
func (h *Handler) CreateCuadro(w http.ResponseWriter, r *http.Request) {
	req, files, err := h.decodeCuadro(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// A new cuadro has no stored images to keep.
	req.ImagenesExistentes = nil
	if err := h.check(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := checkImageCount(len(files)); err != nil {
		h.writeError(w, r, err)
		return
	}

	batch := h.uploads.NewBatch(h.logger)
	urls, err := batch.SaveAll(files, upload.KindCuadro)
	if err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}

	id, err := h.cuadros.Create(r.Context(), model.CuadroInput{
		Titulo:         req.Titulo,
		Descripcion:    req.Descripcion,
		SubcategoriaID: req.SubcategoriaID,
		Imagenes:       urls,
	})
	if err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Cuadro creado correctamente.", ID: id})
}

// UpdateCuadro handles PUT /api/cuadros/{id}. The new image list is the
// kept stored images followed by the uploads; stored images left out are
// deleted.
func (h *Handler) UpdateCuadro(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	req, files, err := h.decodeCuadro(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	current, err := h.cuadros.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := keepsOwnImages(current, req.ImagenesExistentes); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := checkImageCount(len(req.ImagenesExistentes) + len(files)); err != nil {
		h.writeError(w, r, err)
		return
	}

	batch := h.uploads.NewBatch(h.logger)
	urls, err := batch.SaveAll(files, upload.KindCuadro)
	if err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}

	imagenes := append(append([]string{}, req.ImagenesExistentes...), urls...)
	if err := h.cuadros.Update(r.Context(), id, model.CuadroInput{
		Titulo:         req.Titulo,
		Descripcion:    req.Descripcion,
		SubcategoriaID: req.SubcategoriaID,
		Imagenes:       imagenes,
	}); err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Cuadro actualizado correctamente.", ID: id})
}

// DeleteCuadro handles DELETE /api/cuadros/{id}.
func (h *Handler) DeleteCuadro(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.cuadros.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Cuadro eliminado correctamente.", ID: id})
}

func checkImageCount(n int) error {
	if n > MaxCuadroImages {
		return apperr.Validation(
			fmt.Sprintf("Un cuadro admite como máximo %d imágenes.", MaxCuadroImages),
			map[string]string{"imagenes": "max"})
	}
	return nil
}

// keepsOwnImages rejects kept images that do not belong to the cuadro.
func keepsOwnImages(current *model.CuadroDetail, kept []string) error {
	own := make(map[string]struct{}, len(current.Imagenes))
	for _, img := range current.Imagenes {
		own[img.URL] = struct{}{}
	}
	for _, url := range kept {
		if _, ok := own[url]; !ok {
			return apperr.Validation("La lista de imágenes existentes contiene imágenes ajenas al cuadro.",
				map[string]string{"imagenesExistentes": "unknown"})
		}
	}
	return nil
}
