package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"inventory-rest-api/internal/model"
	"inventory-rest-api/internal/service"
	"inventory-rest-api/pkg/apierror"
	"inventory-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temp files.
const multipartMemory = 1 << 20

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	maxUploadBytes   int64
}

// NewInventoryHandler creates a new inventory handler.
// maxUploadBytes bounds request bodies; 0 means 10 MiB.
func NewInventoryHandler(inventoryService *service.InventoryService, maxUploadBytes int64) *InventoryHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &InventoryHandler{
		inventoryService: inventoryService,
		maxUploadBytes:   maxUploadBytes,
	}
}

// registerRequest is the JSON form of POST /register. It carries no photo.
type registerRequest struct {
	InventoryName string `json:"inventory_name"`
	Description   string `json:"description"`
}

// Register handles POST /register
func (h *InventoryHandler) Register(w http.ResponseWriter, r *http.Request) {
	if isJSON(r) {
		var req registerRequest
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, apierror.BadRequest("invalid JSON"))
			return
		}
		item, err := h.inventoryService.Register(r.Context(), req.InventoryName, req.Description, nil)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.Created(w, item)
		return
	}

	if err := h.parseForm(w, r); err != nil {
		response.Error(w, err)
		return
	}

	photo, err := formPhoto(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if photo != nil {
		defer photo.Close()
	}

	item, err := h.inventoryService.Register(r.Context(), r.FormValue("inventory_name"), r.FormValue("description"), photo)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, item)
}

// List handles GET /inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, items)
}

// Get handles GET /inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	item, err := h.inventoryService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, item)
}

// Update handles PUT /inventory/{id}
//
// The body is either JSON or a form. Blank fields are left untouched.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	var patch model.ItemPatch
	if isJSON(r) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			response.Error(w, apierror.BadRequest("invalid JSON"))
			return
		}
	} else {
		if err := h.parseForm(w, r); err != nil {
			response.Error(w, err)
			return
		}
		patch.InventoryName = r.FormValue("inventory_name")
		patch.Description = r.FormValue("description")
	}

	item, err := h.inventoryService.Update(r.Context(), id, patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, item)
}

// ReplacePhoto handles PUT /inventory/{id}/photo
func (h *InventoryHandler) ReplacePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.parseForm(w, r); err != nil {
		response.Error(w, err)
		return
	}

	photo, err := formPhoto(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if photo == nil {
		response.Error(w, apierror.BadRequest("photo is required"))
		return
	}
	defer photo.Close()

	if err := h.inventoryService.ReplacePhoto(r.Context(), id, photo); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Photo updated"})
}

// GetPhoto handles GET /inventory/{id}/photo
func (h *InventoryHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	f, err := h.inventoryService.OpenPhoto(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		response.Error(w, apierror.InternalError("failed to read photo"))
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// Delete handles DELETE /inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.inventoryService.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Deleted"})
}

// searchRequest accepts id and has_photo as JSON strings, numbers or booleans.
type searchRequest struct {
	ID       json.RawMessage `json:"id"`
	HasPhoto json.RawMessage `json:"has_photo"`
}

// Search handles POST /search
func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var rawID, hasPhoto string

	if isJSON(r) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, apierror.BadRequest("invalid JSON"))
			return
		}
		rawID = unquote(req.ID)
		hasPhoto = unquote(req.HasPhoto)
	} else {
		if err := h.parseForm(w, r); err != nil {
			response.Error(w, err)
			return
		}
		rawID = r.FormValue("id")
		hasPhoto = r.FormValue("has_photo")
	}

	id, err := parseID(rawID)
	if err != nil {
		response.Error(w, err)
		return
	}

	result, err := h.inventoryService.Search(r.Context(), id, service.IncludePhoto(hasPhoto))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, result)
}

// parseForm parses a multipart or urlencoded body bounded by maxUploadBytes.
func (h *InventoryHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierror.PayloadTooLarge("request body too large")
	}
	return apierror.BadRequest("invalid form body")
}

// formPhoto returns the uploaded photo part, or nil when none or an empty
// file was sent. The caller closes the returned file.
func formPhoto(r *http.Request) (multipart.File, error) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apierror.BadRequest("invalid photo upload")
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil
	}
	return file, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("invalid id").WithDetails(apierror.FieldError{
			Field:   "id",
			Message: "must be a positive integer",
		})
	}
	return id, nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func unquote(raw json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}
