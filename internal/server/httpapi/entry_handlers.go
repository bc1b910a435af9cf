package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/dailyjournal/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	list, err := h.entries.List(r.Context(), principal(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.entries.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	e, err := h.entries.Create(r.Context(), principal(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	e, err := h.entries.Update(r.Context(), principal(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Journal entry deleted"})
}
