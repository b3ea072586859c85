package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user/entity"
)

// Store is the entity store as seen by the protocol adapters.
type Store interface {
	List(ctx context.Context) Result
	Get(ctx context.Context, id int64) Result
	Create(ctx context.Context, f entity.Fields) Result
	Update(ctx context.Context, id int64, f entity.Fields) Result
	Delete(ctx context.Context, id int64) Result
}

const maxBodyBytes = 1 << 20

// Handler exposes the store over plain REST. Bodies are the Result as JSON.
type Handler struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewHandler(store Store, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{store: store, logger: logger}
}

// Register mounts the five user routes below prefix (e.g. "" or "/api").
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	mux.HandleFunc("GET "+prefix+"/users", h.List)
	mux.HandleFunc("GET "+prefix+"/users/{id}", h.Get)
	mux.HandleFunc("POST "+prefix+"/users", h.Create)
	mux.HandleFunc("PUT "+prefix+"/users/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/users/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.List(r.Context()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		h.writeJSON(w, http.StatusNotFound, NotFound())
		return
	}
	res := h.store.Get(r.Context(), id)
	h.writeJSON(w, statusFor(res, http.StatusOK, http.StatusNotFound), res)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(w, r)
	if err != nil {
		h.logger.Debugw("invalid user payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	res := h.store.Create(r.Context(), f)
	h.writeJSON(w, statusFor(res, http.StatusCreated, http.StatusBadRequest), res)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		h.writeJSON(w, http.StatusNotFound, NotFound())
		return
	}
	f, err := decodeFields(w, r)
	if err != nil {
		h.logger.Debugw("invalid user payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, fail("Invalid request body"))
		return
	}
	res := h.store.Update(r.Context(), id, f)
	h.writeJSON(w, statusFor(res, http.StatusOK, http.StatusNotFound), res)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		h.writeJSON(w, http.StatusNotFound, NotFound())
		return
	}
	res := h.store.Delete(r.Context(), id)
	h.writeJSON(w, statusFor(res, http.StatusOK, http.StatusNotFound), res)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warnw("write response failed", "err", err)
	}
}

func statusFor(res Result, success, failure int) int {
	if res.Success {
		return success
	}
	return failure
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	return id, err == nil
}

// decodeFields treats an empty body as empty fields so the store reports
// the missing name/email.
func decodeFields(w http.ResponseWriter, r *http.Request) (entity.Fields, error) {
	var f entity.Fields
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&f)
	if errors.Is(err, io.EOF) {
		return f, nil
	}
	return f, err
}
