package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storely/storefront/internal/domain/product"
	"github.com/storely/storefront/internal/domain/store"
	"github.com/storely/storefront/internal/events"
)

// listProducts handles GET /api/products, optionally filtered by
// ?storeId=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("storeId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

// createProduct handles POST /api/products. The store must exist; the
// product:created event is enqueued in the same transaction as the insert.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req newProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msgs := req.validate(); len(msgs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgs...)
		return
	}

	if _, err := h.stores.GetByID(r.Context(), req.StoreID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	p := &product.Product{
		ID:      req.ID,
		StoreID: req.StoreID,
		Name:    req.Name,
		Price:   decimal.NewFromFloat(req.Price),
		Stock:   req.Stock,
		Image:   req.Image,
		Version: 1,
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	err := h.tx.WithinTx(r.Context(), func(ctx context.Context) error {
		if err := h.products.Create(ctx, p); err != nil {
			return err
		}
		return h.outbox.Enqueue(ctx, events.ProductCreated(p.ID, p.StoreID, p.Name, p.Stock))
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(*p))
}

// editProduct handles PATCH /api/products/{id}: a partial update of name,
// price, stock and image. The product:updated event is enqueued in the
// same transaction as the write.
func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	var req editProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msgs := req.validate(); len(msgs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgs...)
		return
	}

	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = decimal.NewFromFloat(*req.Price)
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Image != nil {
		p.Image = *req.Image
	}

	err = h.tx.WithinTx(r.Context(), func(ctx context.Context) error {
		if err := h.products.Update(ctx, p); err != nil {
			return err
		}
		return h.outbox.Enqueue(ctx, events.ProductUpdated(p.ID, p.StoreID, p.Name, p.Stock))
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	p.Version++
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

// deleteProduct handles DELETE /api/products/{id} as a soft delete.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.SoftDelete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listStores handles GET /api/stores.
func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.stores.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]storeResponse, len(stores))
	for i, s := range stores {
		out[i] = toStoreResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}

// getStore handles GET /api/stores/{id}.
func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	s, err := h.stores.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStoreResponse(*s))
}

// createStore handles POST /api/stores.
func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req newStoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msgs := req.validate(); len(msgs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgs...)
		return
	}

	s := &store.Store{ID: uuid.New().String(), Name: req.Name}
	err := h.tx.WithinTx(r.Context(), func(ctx context.Context) error {
		if err := h.stores.Create(ctx, s); err != nil {
			return err
		}
		return h.outbox.Enqueue(ctx, events.StoreCreated(s.ID, s.Name))
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStoreResponse(*s))
}
