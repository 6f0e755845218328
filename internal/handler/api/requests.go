// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

const (
	// maxJSONBody bounds JSON request bodies.
	maxJSONBody = 1 << 20
	// maxFormMemory is the multipart memory budget; larger parts spill to disk.
	maxFormMemory = 8 << 20
	// MaxCuadroImages bounds the image list of one cuadro.
	MaxCuadroImages = 10
)

// CategoryRequest is the body of category create and update.
type CategoryRequest struct {
	Nombre        string   `json:"nombre" validate:"required,max=100"`
	Subcategorias []string `json:"subcategorias" validate:"required,min=1,max=50,dive,required,max=100"`
	Color         string   `json:"color" validate:"omitempty,hexcolor"`
}

// Input converts the request to the service input.
func (req CategoryRequest) Input(imagen string) model.CategoryInput {
	return model.CategoryInput{
		Nombre:        req.Nombre,
		Subcategorias: req.Subcategorias,
		Color:         strings.ToLower(req.Color),
		Imagen:        imagen,
	}
}

// FeaturedRequest is the body of POST /api/categorias/destacadas.
type FeaturedRequest struct {
	IDs []int64 `json:"ids" validate:"max=4,dive,gt=0"`
}

// CuadroRequest is the body of cuadro create and update. ImagenesExistentes
// lists, in display order, the stored images an update keeps; new uploads
// are appended after them.
type CuadroRequest struct {
	Titulo             string   `json:"titulo" validate:"required,max=200"`
	Descripcion        string   `json:"descripcion" validate:"max=5000"`
	SubcategoriaID     int64    `json:"subcategoria" validate:"required,gt=0"`
	ImagenesExistentes []string `json:"imagenesExistentes" validate:"max=10,dive,required"`
}

// UserRequest is the body of user create and update.
type UserRequest struct {
	Nombre   string          `json:"nombre" validate:"required,max=50"`
	Password string          `json:"password" validate:"omitempty,min=4,max=128"`
	Rol      model.Role      `json:"rol" validate:"omitempty,oneof=admin editor viewer"`
	Estado   model.UserState `json:"estado" validate:"omitempty,oneof=activo inactivo"`
}

// form is a parsed JSON-free request body: form values plus uploaded files.
type form struct {
	values map[string][]string
	files  map[string][]*multipart.FileHeader
}

// value returns the first value of the first present key.
func (f form) value(keys ...string) string {
	for _, k := range keys {
		if v := f.values[k]; len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// list returns every value of every key, e.g. "subcategorias[]" and
// "subcategorias".
func (f form) list(keys ...string) []string {
	var out []string
	for _, k := range keys {
		out = append(out, f.values[k]...)
	}
	return out
}

// file returns the first file of the first present key, or nil.
func (f form) file(keys ...string) *multipart.FileHeader {
	if fhs := f.fileList(keys...); len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

// fileList returns every file of every key.
func (f form) fileList(keys ...string) []*multipart.FileHeader {
	var out []*multipart.FileHeader
	for _, k := range keys {
		out = append(out, f.files[k]...)
	}
	return out
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("El cuerpo de la solicitud no es JSON válido.", map[string]string{"body": "json"})
	}
	return nil
}

// parseForm reads a multipart or urlencoded body of at most maxBody bytes.
func parseForm(w http.ResponseWriter, r *http.Request, maxBody int64) (form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return form{}, apperr.Validation("La solicitud supera el tamaño máximo permitido.",
				map[string]string{"body": "size"})
		}
		return form{}, apperr.Validation("Formulario inválido.", map[string]string{"body": "form"})
	}

	f := form{values: r.PostForm}
	if r.MultipartForm != nil {
		f.values = r.MultipartForm.Value
		f.files = r.MultipartForm.File
	}
	return f, nil
}

// decodeCategory reads a CategoryRequest and its optional image.
func (h *Handler) decodeCategory(w http.ResponseWriter, r *http.Request) (CategoryRequest, *multipart.FileHeader, error) {
	var req CategoryRequest
	if middleware.SentJSON(r) {
		return req, nil, decodeJSON(r, &req)
	}
	f, err := parseForm(w, r, h.uploads.MaxBytes()+maxJSONBody)
	if err != nil {
		return req, nil, err
	}
	req.Nombre = f.value("nombre")
	req.Subcategorias = f.list("subcategorias[]", "subcategorias")
	req.Color = f.value("color")
	return req, f.file("imagen"), nil
}

// decodeCuadro reads a CuadroRequest and its uploaded images.
func (h *Handler) decodeCuadro(w http.ResponseWriter, r *http.Request) (CuadroRequest, []*multipart.FileHeader, error) {
	var req CuadroRequest
	if middleware.SentJSON(r) {
		return req, nil, decodeJSON(r, &req)
	}
	f, err := parseForm(w, r, MaxCuadroImages*h.uploads.MaxBytes()+maxJSONBody)
	if err != nil {
		return req, nil, err
	}
	req.Titulo = f.value("titulo")
	req.Descripcion = f.value("descripcion")
	if v := f.value("subcategoria", "subcategoria_id"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return req, nil, apperr.Validation("Debes seleccionar una subcategoría.",
				map[string]string{"subcategoria": "number"})
		}
		req.SubcategoriaID = id
	}
	if raw := strings.TrimSpace(f.value("imagenesExistentes")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.ImagenesExistentes); err != nil {
			return req, nil, apperr.Validation("La lista de imágenes existentes no es válida.",
				map[string]string{"imagenesExistentes": "json"})
		}
	}
	return req, f.fileList("imagenes", "imagenes[]", "imagen"), nil
}

// decodeUser reads a UserRequest and its optional avatar.
func (h *Handler) decodeUser(w http.ResponseWriter, r *http.Request) (UserRequest, *multipart.FileHeader, error) {
	var req UserRequest
	if middleware.SentJSON(r) {
		return req, nil, decodeJSON(r, &req)
	}
	f, err := parseForm(w, r, h.uploads.MaxBytes()+maxJSONBody)
	if err != nil {
		return req, nil, err
	}
	req.Nombre = f.value("nombre")
	req.Password = f.value("password")
	req.Rol = model.Role(f.value("rol"))
	req.Estado = model.UserState(f.value("estado"))
	return req, f.file("avatar"), nil
}
