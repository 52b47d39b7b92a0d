package api

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/storely/storefront/internal/domain/client"
	"github.com/storely/storefront/internal/domain/order"
)

// createOrder handles POST /api/orders: validates the DTO, delegates to
// the order service, and maps the result (or error) back to JSON.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req newOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msgs := req.validate(); len(msgs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgs...)
		return
	}

	method, _ := order.ParsePaymentMethod(req.PaymentMethod)
	items := make([]order.NewOrderItem, len(req.Products))
	for i, p := range req.Products {
		items[i] = order.NewOrderItem{ProductID: p.ID, OrderedQuantity: p.OrderedQuantity}
	}

	o, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		StoreID:       req.StoreID,
		PaymentMethod: method,
		Items:         items,
		Client: order.NewClient{
			FirstName:   req.Client.FirstName,
			LastName:    req.Client.LastName,
			Email:       req.Client.Email,
			PhoneNumber: req.Client.PhoneNumber,
			Address: client.Address{
				Street:  req.Client.Address.Street,
				City:    req.Client.Address.City,
				State:   req.Client.Address.State,
				ZipCode: req.Client.Address.ZipCode,
			},
		},
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("order.id", o.ID),
		attribute.String("order.store_id", o.StoreID),
	)
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// listOrders handles GET /api/orders/{storeId}. The path names the store,
// but only the key owning that store may read its orders; a foreign store
// gets the same not-found presentation as a missing one.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeId")
	if key := keyFromContext(r.Context()); key.StoreID != storeID {
		writeDomainError(w, r, order.NotFoundf("Store %s not found", storeID))
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), storeID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// getOrder handles GET /api/orders/order/{id}. The store scope comes from
// the authenticated API key, not from the request.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	key := keyFromContext(r.Context())

	o, err := h.orders.GetOrder(r.Context(), r.PathValue("id"), key.StoreID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// updateOrder handles PUT /api/orders/{id}: a status transition scoped to
// the authenticated key's store.
func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msgs := req.validate(); len(msgs) > 0 {
		writeError(w, r, http.StatusBadRequest, msgs...)
		return
	}

	key := keyFromContext(r.Context())
	status, _ := order.ParseStatus(req.Status)

	o, err := h.orders.UpdateOrder(r.Context(), r.PathValue("id"), key.StoreID, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
