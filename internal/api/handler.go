// Package api exposes the HTTP surface: hand-written handlers over
// net/http.ServeMux, DTO validation, API-key security, and the error
// presentation the platform's consumers expect.
package api

import (
	"net/http"

	"github.com/storely/storefront/internal/domain/auth"
	"github.com/storely/storefront/internal/domain/order"
	"github.com/storely/storefront/internal/domain/product"
	"github.com/storely/storefront/internal/domain/store"
)

// Handler wires HTTP routes to the order lifecycle service and the
// supporting catalog repositories.
type Handler struct {
	orders   *order.Service
	products product.Repository
	stores   store.Repository
	apikeys  auth.Repository
	outbox   order.Outbox
	tx       order.TxRunner
	pepper   []byte
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	products product.Repository,
	stores store.Repository,
	apikeys auth.Repository,
	outbox order.Outbox,
	tx order.TxRunner,
	pepper []byte,
) *Handler {
	return &Handler{
		orders:   orders,
		products: products,
		stores:   stores,
		apikeys:  apikeys,
		outbox:   outbox,
		tx:       tx,
		pepper:   pepper,
	}
}

// Register mounts all API routes on the mux. Store-owner endpoints require
// an API key; order placement and catalog reads are public.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders/order/{id}", h.requireAPIKey(h.getOrder))
	mux.HandleFunc("GET /api/orders/{storeId}", h.requireAPIKey(h.listOrders))
	mux.HandleFunc("PUT /api/orders/{id}", h.requireAPIKey(h.updateOrder))

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("POST /api/products", h.requireAPIKey(h.createProduct))
	mux.HandleFunc("PATCH /api/products/{id}", h.requireAPIKey(h.editProduct))
	mux.HandleFunc("DELETE /api/products/{id}", h.requireAPIKey(h.deleteProduct))

	mux.HandleFunc("POST /api/stores", h.requireAPIKey(h.createStore))
	mux.HandleFunc("GET /api/stores", h.listStores)
	mux.HandleFunc("GET /api/stores/{id}", h.getStore)
}
