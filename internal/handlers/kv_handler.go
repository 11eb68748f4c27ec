package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/interfaces"
	"github.com/ternarybob/moneypulse/internal/services/kv"
)

const kvPathPrefix = "/api/kv/"

// KVHandler manages stored variables such as provider API keys
type KVHandler struct {
	kvService KVService
	onChange  func()
	logger    arbor.ILogger
}

// NewKVHandler creates a new KV handler. onChange, if set, runs after every
// successful write so cached clients pick up new keys.
func NewKVHandler(kvService KVService, onChange func(), logger arbor.ILogger) *KVHandler {
	return &KVHandler{
		kvService: kvService,
		onChange:  onChange,
		logger:    logger,
	}
}

// ListKVHandler handles GET /api/kv - values are masked
func (h *KVHandler) ListKVHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	pairs, err := h.kvService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list key/value pairs")
		WriteError(w, http.StatusInternalServerError, "Failed to list key/value pairs")
		return
	}

	masked := make([]map[string]interface{}, len(pairs))
	for i, pair := range pairs {
		masked[i] = map[string]interface{}{
			"key":         pair.Key,
			"value":       maskValue(pair.Value),
			"description": pair.Description,
			"created_at":  pair.CreatedAt,
			"updated_at":  pair.UpdatedAt,
		}
	}

	WriteJSON(w, http.StatusOK, masked)
}

// ItemHandler handles PUT and DELETE /api/kv/{key}
func (h *KVHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, kvPathPrefix))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid key encoding")
		return
	}
	if strings.TrimSpace(key) == "" || strings.Contains(key, "/") {
		WriteError(w, http.StatusBadRequest, "Missing key parameter")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.put(w, r, key)
	case http.MethodDelete:
		h.delete(w, r, key)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *KVHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	var req struct {
		Value       string `json:"value"`
		Description string `json:"description"`
	}
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Value == "" {
		WriteError(w, http.StatusBadRequest, "Value is required")
		return
	}

	if err := h.kvService.Set(r.Context(), key, req.Value, req.Description); err != nil {
		if errors.Is(err, kv.ErrInvalidKey) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to store key/value pair")
		WriteError(w, http.StatusInternalServerError, "Failed to store key/value pair")
		return
	}
	h.changed()

	h.logger.Info().Str("key", key).Msg("Stored key/value pair")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"key":    key,
	})
}

func (h *KVHandler) delete(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.kvService.Delete(r.Context(), key); err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Key not found")
			return
		}
		if errors.Is(err, kv.ErrInvalidKey) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to delete key/value pair")
		WriteError(w, http.StatusInternalServerError, "Failed to delete key/value pair")
		return
	}
	h.changed()

	h.logger.Info().Str("key", key).Msg("Deleted key/value pair")
	WriteSuccess(w, "Key/value pair deleted")
}

func (h *KVHandler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

// maskValue shows the first and last 4 characters of long values
func maskValue(value string) string {
	if len(value) < 12 {
		return "••••••••"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
