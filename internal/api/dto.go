package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/storely/storefront/internal/domain/client"
	"github.com/storely/storefront/internal/domain/order"
	"github.com/storely/storefront/internal/domain/product"
	"github.com/storely/storefront/internal/domain/store"
)

// --- Requests ---

type newOrderRequest struct {
	StoreID       string           `json:"storeId"`
	PaymentMethod string           `json:"paymentMethod"`
	Products      []newOrderItem   `json:"products"`
	Client        newClientRequest `json:"client"`
}

type newOrderItem struct {
	ID              string `json:"id"`
	OrderedQuantity int    `json:"orderedQuantity"`
}

type newClientRequest struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Email       string         `json:"email"`
	PhoneNumber string         `json:"phoneNumber"`
	Address     addressRequest `json:"address"`
}

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// validate mirrors the request-DTO constraints: required fields, enum
// membership, positive quantities. All violations are collected so the
// caller gets one 400 with every message.
func (r *newOrderRequest) validate() []string {
	var msgs []string
	if r.StoreID == "" {
		msgs = append(msgs, "storeId should not be empty")
	}
	if _, ok := order.ParsePaymentMethod(r.PaymentMethod); !ok {
		msgs = append(msgs, "paymentMethod must be one of CASH, CREDIT_CARD, DEBIT_CARD")
	}
	if len(r.Products) == 0 {
		msgs = append(msgs, "products should not be empty")
	}
	for i, p := range r.Products {
		if p.ID == "" {
			msgs = append(msgs, fmt.Sprintf("products.%d.id should not be empty", i))
		}
		if p.OrderedQuantity < 1 {
			msgs = append(msgs, fmt.Sprintf("products.%d.orderedQuantity must not be less than 1", i))
		}
	}
	msgs = append(msgs, r.Client.validate()...)
	return msgs
}

func (c *newClientRequest) validate() []string {
	var msgs []string
	if c.FirstName == "" {
		msgs = append(msgs, "client.firstName should not be empty")
	}
	if c.LastName == "" {
		msgs = append(msgs, "client.lastName should not be empty")
	}
	if c.PhoneNumber == "" {
		msgs = append(msgs, "client.phoneNumber should not be empty")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		msgs = append(msgs, "client.email must be an email")
	}
	for _, f := range []struct {
		name, value string
	}{
		{"street", c.Address.Street},
		{"city", c.Address.City},
		{"state", c.Address.State},
		{"zipCode", c.Address.ZipCode},
	} {
		if f.value == "" {
			msgs = append(msgs, "client.address."+f.name+" should not be empty")
		}
	}
	return msgs
}

type updateOrderRequest struct {
	Status string `json:"status"`
}

func (r *updateOrderRequest) validate() []string {
	if _, ok := order.ParseStatus(r.Status); !ok {
		return []string{"status must be one of PENDING, CONFIRMED, CANCELLED"}
	}
	return nil
}

type newProductRequest struct {
	ID      string  `json:"id"`
	StoreID string  `json:"storeId"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
	Image   string  `json:"image"`
}

func (r *newProductRequest) validate() []string {
	var msgs []string
	if r.StoreID == "" {
		msgs = append(msgs, "storeId should not be empty")
	}
	if r.Name == "" {
		msgs = append(msgs, "name should not be empty")
	}
	if r.Price <= 0 {
		msgs = append(msgs, "price must be a positive number")
	}
	if r.Stock < 0 {
		msgs = append(msgs, "stock must not be less than 0")
	}
	return msgs
}

// editProductRequest is a partial update: nil fields keep their stored
// value.
type editProductRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Stock *int     `json:"stock"`
	Image *string  `json:"image"`
}

func (r *editProductRequest) validate() []string {
	var msgs []string
	if r.Name != nil && *r.Name == "" {
		msgs = append(msgs, "name should not be empty")
	}
	if r.Price != nil && *r.Price <= 0 {
		msgs = append(msgs, "price must be a positive number")
	}
	if r.Stock != nil && *r.Stock < 0 {
		msgs = append(msgs, "stock must not be less than 0")
	}
	return msgs
}

type newStoreRequest struct {
	Name string `json:"name"`
}

func (r *newStoreRequest) validate() []string {
	if r.Name == "" {
		return []string{"name should not be empty"}
	}
	return nil
}

// --- Responses ---

type orderResponse struct {
	ID            string              `json:"id"`
	OrderDate     string              `json:"orderDate"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"paymentMethod"`
	TotalPrice    float64             `json:"totalPrice"`
	StoreID       string              `json:"storeId"`
	Client        clientResponse      `json:"client"`
	Products      []orderItemResponse `json:"products"`
	Version       int64               `json:"version"`
}

type orderItemResponse struct {
	ProductID       string  `json:"productId"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unitPrice"`
	OrderedQuantity int     `json:"orderedQuantity"`
}

type clientResponse struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email,omitempty"`
	PhoneNumber string          `json:"phoneNumber"`
	Address     addressResponse `json:"address"`
}

type addressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type productResponse struct {
	ID      string  `json:"id"`
	StoreID string  `json:"storeId"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
	Image   string  `json:"image,omitempty"`
	Version int64   `json:"version"`
}

type storeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID:       it.ProductID,
			Name:            it.ProductName,
			UnitPrice:       it.UnitPrice.InexactFloat64(),
			OrderedQuantity: it.OrderedQuantity,
		}
	}
	return orderResponse{
		ID:            o.ID,
		OrderDate:     o.OrderDate.UTC().Format(time.RFC3339),
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		TotalPrice:    o.TotalPrice.InexactFloat64(),
		StoreID:       o.StoreID,
		Client:        toClientResponse(o.Client),
		Products:      items,
		Version:       o.Version,
	}
}

func toClientResponse(c client.Client) clientResponse {
	return clientResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address: addressResponse{
			Street:  c.Address.Street,
			City:    c.Address.City,
			State:   c.Address.State,
			ZipCode: c.Address.ZipCode,
		},
	}
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:      p.ID,
		StoreID: p.StoreID,
		Name:    p.Name,
		Price:   p.Price.InexactFloat64(),
		Stock:   p.Stock,
		Image:   p.Image,
		Version: p.Version,
	}
}

func toStoreResponse(s store.Store) storeResponse {
	return storeResponse{ID: s.ID, Name: s.Name}
}
