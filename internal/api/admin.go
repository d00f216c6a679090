package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adnanlatif/webdesk/internal/desktop"
	"github.com/adnanlatif/webdesk/internal/store"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// Admin editor handlers. All of these sit behind RequireAdmin; they are
// thin CRUD over the record store and the auth service.

// ListUsers returns all users with passwords omitted.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auth.ListUsers())
}

// CreateUser inserts a new user row.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.auth.CreateUser(u)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateUser merges submitted fields into a user row.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.UpdateUser(mux.Vars(r)["id"], u); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes a user row.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeleteUser(mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSecrets returns all secret key rows. Values are included: this is
// the editor the relay reads from, and it is already admin-gated.
func (h *Handler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	recs := h.recs.Query(store.TableSecrets, nil)

	secrets := make([]models.SecretKey, 0, len(recs))
	for _, rec := range recs {
		secrets = append(secrets, models.SecretKey{
			ID:       rec.ID(),
			KeyName:  rec.String("keyName"),
			KeyValue: rec.String("keyValue"),
		})
	}
	writeJSON(w, http.StatusOK, secrets)
}

// CreateSecret inserts a secret key row.
func (h *Handler) CreateSecret(w http.ResponseWriter, r *http.Request) {
	var sk models.SecretKey
	if err := json.NewDecoder(r.Body).Decode(&sk); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sk.KeyName == "" {
		writeError(w, http.StatusBadRequest, "keyName is required")
		return
	}

	id, err := h.recs.Insert(store.TableSecrets, store.Record{
		"keyName":  sk.KeyName,
		"keyValue": sk.KeyValue,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateSecret merges submitted fields into a secret key row.
func (h *Handler) UpdateSecret(w http.ResponseWriter, r *http.Request) {
	var sk models.SecretKey
	if err := json.NewDecoder(r.Body).Decode(&sk); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := store.Record{}
	if sk.KeyName != "" {
		fields["keyName"] = sk.KeyName
	}
	if sk.KeyValue != "" {
		fields["keyValue"] = sk.KeyValue
	}

	if err := h.recs.Update(store.TableSecrets, mux.Vars(r)["id"], fields); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSecret removes a secret key row.
func (h *Handler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	if err := h.recs.Delete(store.TableSecrets, mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListIcons returns the persisted icon layout.
func (h *Handler) ListIcons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Icons())
}

// CreateIcon inserts a desktop icon row.
func (h *Handler) CreateIcon(w http.ResponseWriter, r *http.Request) {
	var icon models.DesktopIcon
	if err := json.NewDecoder(r.Body).Decode(&icon); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if icon.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if icon.Behavior == "" {
		icon.Behavior = models.OpenInWindow
	}

	id, err := h.recs.Insert(store.TableIcons, desktop.IconRecord(icon))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateIcon replaces a desktop icon row.
func (h *Handler) UpdateIcon(w http.ResponseWriter, r *http.Request) {
	var icon models.DesktopIcon
	if err := json.NewDecoder(r.Body).Decode(&icon); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := mux.Vars(r)["id"]
	rec := desktop.IconRecord(icon)
	delete(rec, "id")

	if err := h.recs.Update(store.TableIcons, id, rec); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteIcon removes a desktop icon row.
func (h *Handler) DeleteIcon(w http.ResponseWriter, r *http.Request) {
	if err := h.recs.Delete(store.TableIcons, mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
