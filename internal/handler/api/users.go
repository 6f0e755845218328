// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"mime/multipart"
	"net/http"

	"github.com/galeria-cuadros/cuadros/internal/handler"
	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/upload"
)

// ListUsers handles GET /api/usuarios.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/usuarios/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, u)
}

// CreateUser handles POST /api/usuarios.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, avatar, err := h.decodeUser(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	batch := h.uploads.NewBatch(h.logger)
	in, err := userInput(batch, req, avatar)
	if err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	id, err := h.users.Create(r.Context(), in)
	if err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Usuario creado correctamente.", ID: id})
}

// UpdateUser handles PUT /api/usuarios/{id}. An empty password keeps the
// current one.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	req, avatar, err := h.decodeUser(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	batch := h.uploads.NewBatch(h.logger)
	in, err := userInput(batch, req, avatar)
	if err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	if err := h.users.Update(r.Context(), id, in); err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Usuario actualizado correctamente.", ID: id})
}

// DeleteUser handles DELETE /api/usuarios/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Usuario eliminado correctamente.", ID: id})
}

// userInput stores the optional avatar in batch and builds the service input.
func userInput(batch *upload.Batch, req UserRequest, avatar *multipart.FileHeader) (model.UserInput, error) {
	in := model.UserInput{
		Nombre:   req.Nombre,
		Password: req.Password,
		Rol:      req.Rol,
		Estado:   req.Estado,
	}
	if avatar != nil {
		url, err := batch.Save(avatar, upload.KindAvatar)
		if err != nil {
			return in, err
		}
		in.Avatar = url
	}
	return in, nil
}
