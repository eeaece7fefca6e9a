// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"pricewatch/internal/app"
	"pricewatch/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	AddProduct(ctx context.Context, rawURL string, target decimal.Decimal) (model.Product, error)
	RemoveProduct(ctx context.Context, id int64) error
	Products(ctx context.Context) ([]model.ProductSummary, error)
	History(ctx context.Context, productID int64) ([]model.Observation, error)
	Stats(ctx context.Context) (app.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	productsHandler *ProductsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		productsHandler: NewProductsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/products", MetricsMiddleware(s.productsHandler.HandleProducts, "products"))
	mux.HandleFunc("/api/products/", MetricsMiddleware(s.productsHandler.HandleProductByID, "product"))
}

// addProductRequest is the body of POST /api/products.
type addProductRequest struct {
	URL         string `json:"url"`
	TargetPrice string `json:"target_price"`
}

// historyResponse carries an observation series shaped for charting.
type historyResponse struct {
	ProductID int64    `json:"product_id"`
	Labels    []string `json:"labels"`
	Prices    []string `json:"prices"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
