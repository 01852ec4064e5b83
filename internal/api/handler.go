package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/samandr77/microservices/claims/internal/entity"
	"github.com/samandr77/microservices/claims/pkg/ratelimit"
)

type Service interface {
	CreateClaim(ctx context.Context, in entity.ClaimInput) (entity.Claim, error)
	AssignTechnicians(ctx context.Context, id entity.ClaimID, technicians []string, status entity.Status) (entity.Claim, error)
	Resolve(ctx context.Context, id entity.ClaimID, seal *string) (entity.Claim, error)
	Reopen(ctx context.Context, id entity.ClaimID) (entity.Claim, error)
	ListActiveForClient(ctx context.Context, number string) ([]entity.Claim, error)
	CurrentClaim(ctx context.Context, number string) (entity.Claim, error)
	ClientHistory(ctx context.Context, number string) ([]entity.Claim, error)
	GetClaim(ctx context.Context, id entity.ClaimID) (entity.Claim, error)
	ListClaims(ctx context.Context, f entity.ClaimFilter) ([]entity.Claim, error)
	Summary(ctx context.Context) (entity.Summary, error)
	GetClient(ctx context.Context, number string) (entity.Client, error)
	CreateClient(ctx context.Context, c entity.Client) (entity.Client, error)
	UpdateClient(ctx context.Context, number string, upd entity.ClientUpdate) (entity.Client, error)
	ImportClients(ctx context.Context, clients []entity.Client) (int, error)
	StoreStats() ratelimit.Stats
	Catalog() entity.Catalog
}

type Handler struct {
	s     Service
	cache *readCache
}

func NewHandler(s Service, cacheTTL time.Duration) *Handler {
	return &Handler{
		s:     s,
		cache: newReadCache(cacheTTL),
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := w.Write([]byte("El servicio funciona\n"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "El servicio no funciona")
		return
	}
}

type CatalogResponse struct {
	Technicians []string `json:"technicians"`
	ClaimTypes  []string `json:"claimTypes"`
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	c := h.s.Catalog()

	SendJSON(r.Context(), w, http.StatusOK, CatalogResponse{
		Technicians: c.Technicians(),
		ClaimTypes:  c.ClaimTypes(),
	})
}

type CreateClaimResponse struct {
	ID    entity.ClaimID `json:"id"`
	Claim entity.Claim   `json:"claim"`
}

func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req entity.ClaimInput

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "JSON inválido")
		return
	}

	claim, err := h.s.CreateClaim(ctx, req)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo registrar el reclamo")
		return
	}

	h.cache.flush()
	SendJSON(ctx, w, http.StatusCreated, CreateClaimResponse{ID: claim.ID, Claim: claim})
}

func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	f := entity.ClaimFilter{
		Sector:    q.Get("sector"),
		ClaimType: q.Get("type"),
	}

	if raw := q.Get("status"); raw != "" {
		st, err := entity.ParseStatus(raw)
		if err != nil {
			SendServiceErr(ctx, w, err, "Estado inválido")
			return
		}

		f.Status = st
	}

	key := "claims?" + q.Encode()

	if v, ok := h.cache.get(key); ok {
		SendJSON(ctx, w, http.StatusOK, v)
		return
	}

	claims, err := h.s.ListClaims(ctx, f)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudieron obtener los reclamos")
		return
	}

	h.cache.set(key, claims)
	SendJSON(ctx, w, http.StatusOK, claims)
}

func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := claimID(r)
	if err != nil {
		SendServiceErr(ctx, w, err, "")
		return
	}

	claim, err := h.s.GetClaim(ctx, id)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo obtener el reclamo")
		return
	}

	SendJSON(ctx, w, http.StatusOK, claim)
}

type AssignTechniciansRequest struct {
	Technicians []string `json:"technicians"`
	Status      string   `json:"status"`
}

func (h *Handler) AssignTechnicians(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := claimID(r)
	if err != nil {
		SendServiceErr(ctx, w, err, "")
		return
	}

	var req AssignTechniciansRequest

	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "JSON inválido")
		return
	}

	status, err := entity.ParseStatus(req.Status)
	if err != nil {
		SendServiceErr(ctx, w, err, "")
		return
	}

	claim, err := h.s.AssignTechnicians(ctx, id, req.Technicians, status)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudieron asignar los técnicos")
		return
	}

	h.cache.flush()
	SendJSON(ctx, w, http.StatusOK, claim)
}

type ResolveRequest struct {
	Seal *string `json:"seal"`
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := claimID(r)
	if err != nil {
		SendServiceErr(ctx, w, err, "")
		return
	}

	var req ResolveRequest

	// The body is optional.
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "JSON inválido")
		return
	}

	claim, err := h.s.Resolve(ctx, id, req.Seal)

	h.cache.flush()

	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo cerrar el reclamo")
		return
	}

	SendJSON(ctx, w, http.StatusOK, claim)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := claimID(r)
	if err != nil {
		SendServiceErr(ctx, w, err, "")
		return
	}

	claim, err := h.s.Reopen(ctx, id)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo volver el reclamo a pendiente")
		return
	}

	h.cache.flush()
	SendJSON(ctx, w, http.StatusOK, claim)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client, err := h.s.GetClient(ctx, chi.URLParam(r, "number"))
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo obtener el cliente")
		return
	}

	SendJSON(ctx, w, http.StatusOK, client)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req entity.Client

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "JSON inválido")
		return
	}

	client, err := h.s.CreateClient(ctx, req)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo crear el cliente")
		return
	}

	h.cache.flush()
	SendJSON(ctx, w, http.StatusCreated, client)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req entity.ClientUpdate

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "JSON inválido")
		return
	}

	client, err := h.s.UpdateClient(ctx, chi.URLParam(r, "number"), req)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo actualizar el cliente")
		return
	}

	h.cache.flush()
	SendJSON(ctx, w, http.StatusOK, client)
}

type ImportClientsResponse struct {
	Added int `json:"added"`
}

func (h *Handler) ImportClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req []entity.Client

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "JSON inválido")
		return
	}

	added, err := h.s.ImportClients(ctx, req)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudieron importar los clientes")
		return
	}

	h.cache.flush()
	SendJSON(ctx, w, http.StatusOK, ImportClientsResponse{Added: added})
}

func (h *Handler) ClientHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := chi.URLParam(r, "number")
	key := "history:" + entity.CanonicalKey(number)

	if v, ok := h.cache.get(key); ok {
		SendJSON(ctx, w, http.StatusOK, v)
		return
	}

	claims, err := h.s.ClientHistory(ctx, number)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo obtener el historial")
		return
	}

	h.cache.set(key, claims)
	SendJSON(ctx, w, http.StatusOK, claims)
}

func (h *Handler) ActiveClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := h.s.ListActiveForClient(ctx, chi.URLParam(r, "number"))
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudieron obtener los reclamos activos")
		return
	}

	SendJSON(ctx, w, http.StatusOK, claims)
}

func (h *Handler) CurrentClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claim, err := h.s.CurrentClaim(ctx, chi.URLParam(r, "number"))
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo obtener el reclamo actual")
		return
	}

	SendJSON(ctx, w, http.StatusOK, claim)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if v, ok := h.cache.get("summary"); ok {
		SendJSON(ctx, w, http.StatusOK, v)
		return
	}

	sum, err := h.s.Summary(ctx)
	if err != nil {
		SendServiceErr(ctx, w, err, "No se pudo calcular el resumen")
		return
	}

	h.cache.set("summary", sum)
	SendJSON(ctx, w, http.StatusOK, sum)
}

func (h *Handler) StoreStats(w http.ResponseWriter, r *http.Request) {
	SendJSON(r.Context(), w, http.StatusOK, h.s.StoreStats())
}

func claimID(r *http.Request) (entity.ClaimID, error) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: claim id %q", entity.ErrInvalidArgument, raw)
	}

	return entity.ClaimID(id), nil
}
