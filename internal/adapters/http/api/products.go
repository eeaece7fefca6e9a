package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch/internal/adapters/repository"
)

// ProductsHandler handles the product catalog routes.
type ProductsHandler struct {
	deps Dependencies
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(deps Dependencies) *ProductsHandler {
	return &ProductsHandler{deps: deps}
}

// HandleProducts handles GET and POST /api/products.
func (h *ProductsHandler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// HandleProductByID handles DELETE /api/products/{id} and
// GET /api/products/{id}/history.
func (h *ProductsHandler) HandleProductByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	idPart, tail, _ := strings.Cut(rest, "/")

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", ErrBadRequest)
		return
	}

	switch {
	case tail == "" && r.Method == http.MethodDelete:
		h.remove(w, r, id)
	case tail == "history" && r.Method == http.MethodGet:
		h.history(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", nil)
	}
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.deps.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *ProductsHandler) add(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "missing_url", ErrBadRequest)
		return
	}
	// Target price must be strictly positive.
	target, err := decimal.NewFromString(strings.TrimSpace(req.TargetPrice))
	if err != nil || !target.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid_target_price", ErrBadRequest)
		return
	}

	p, err := h.deps.AddProduct(r.Context(), req.URL, target)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateURL) {
			writeError(w, http.StatusConflict, "duplicate_url", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) remove(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.deps.RemoveProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) history(w http.ResponseWriter, r *http.Request, id int64) {
	obs, err := h.deps.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	resp := historyResponse{
		ProductID: id,
		Labels:    make([]string, 0, len(obs)),
		Prices:    make([]string, 0, len(obs)),
	}
	for _, o := range obs {
		resp.Labels = append(resp.Labels, o.At.UTC().Format(time.RFC3339))
		resp.Prices = append(resp.Prices, o.Price.String())
	}
	writeJSON(w, http.StatusOK, resp)
}
