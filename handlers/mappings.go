package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/medication-identifier/logging"
	"github.com/giygas/medication-identifier/mappings"
)

// RequireOperator rejects mapping management requests that carry no
// operator identity. Authentication happens upstream; the header is only
// used for attribution.
func (h *Handler) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := r.Header.Get(logging.OperatorHeader)
		if operator == "" {
			h.RespondWithError(w, http.StatusUnauthorized, "Missing "+logging.OperatorHeader+" header")
			return
		}
		if err := h.validator.ValidateOperatorID(operator); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListMappingsV1 lists learned mappings.
// GET /v1/mappings?active=true|false&search=...
func (h *Handler) ListMappingsV1(w http.ResponseWriter, r *http.Request) {
	var filter mappings.Filter
	query := r.URL.Query()

	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		filter.IsActive = &active
	}

	if search := query.Get("search"); search != "" {
		if err := h.validator.ValidateName(search); err != nil {
			logging.Warn("Unusual user input", "search", truncate(search, 64), "error", err)
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Search = search
	}

	list, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.respondWithStoreError(w, r, err)
		return
	}
	if list == nil {
		list = []mappings.LearnedMapping{}
	}

	h.RespondWithJSON(w, http.StatusOK, list)
}

// GetMappingV1 returns one mapping.
// GET /v1/mappings/{id}
func (h *Handler) GetMappingV1(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateMappingID(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.store.Find(r.Context(), id)
	if err != nil {
		h.respondWithStoreError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, m)
}

// CreateMappingV1 teaches the engine a new medication name.
// POST /v1/mappings
func (h *Handler) CreateMappingV1(w http.ResponseWriter, r *http.Request) {
	var cmd mappings.CreateCommand
	if err := decodeJSON(r, &cmd); err != nil {
		h.respondWithBodyError(w, err)
		return
	}
	cmd.CreatedBy = r.Header.Get(logging.OperatorHeader)

	m, err := h.store.Create(r.Context(), cmd)
	if err != nil {
		h.respondWithStoreError(w, r, err)
		return
	}

	logging.Info("Learned mapping created",
		"id", m.ID.String(),
		"medication_name", m.MedicationName,
		"active_ingredient", m.ActiveIngredient,
		"operator_id", cmd.CreatedBy,
	)

	w.Header().Set("Location", "/v1/mappings/"+m.ID.String())
	h.RespondWithJSON(w, http.StatusCreated, m)
}

// UpdateMappingV1 applies a partial update.
// PATCH /v1/mappings/{id}
func (h *Handler) UpdateMappingV1(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateMappingID(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var cmd mappings.UpdateCommand
	if err := decodeJSON(r, &cmd); err != nil {
		h.respondWithBodyError(w, err)
		return
	}

	m, err := h.store.Update(r.Context(), id, cmd)
	if err != nil {
		h.respondWithStoreError(w, r, err)
		return
	}

	logging.Info("Learned mapping updated",
		"id", m.ID.String(),
		"is_active", m.IsActive,
		"operator_id", r.Header.Get(logging.OperatorHeader),
	)

	h.RespondWithJSON(w, http.StatusOK, m)
}

// DeactivateMappingV1 soft-deletes a mapping. Deactivating an inactive
// mapping succeeds.
// DELETE /v1/mappings/{id}
func (h *Handler) DeactivateMappingV1(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateMappingID(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Deactivate(r.Context(), id); err != nil {
		h.respondWithStoreError(w, r, err)
		return
	}

	logging.Info("Learned mapping deactivated",
		"id", id.String(),
		"operator_id", r.Header.Get(logging.OperatorHeader),
	)

	w.WriteHeader(http.StatusNoContent)
}
