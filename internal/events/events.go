// Package events defines the cross-service event stream: subjects, payload
// encoding, the transactional outbox contract, and the Kafka publisher.
package events

import (
	"github.com/go-faster/jx"
	"github.com/google/uuid"
)

// Subjects published by this service. Other bounded contexts key their
// consumers off these names.
const (
	SubjectStoreCreated   = "store:created"
	SubjectProductCreated = "product:created"
	SubjectProductUpdated = "product:updated"
	SubjectOrderCreated   = "order:created"
	SubjectOrderCancelled = "order:cancelled"
)

// Event is a single message destined for the event stream. Payload is
// pre-encoded JSON so the outbox can store it verbatim.
type Event struct {
	ID      string
	Subject string
	Key     string
	Payload []byte
}

// Item is a (product, quantity) pair carried by order event payloads.
type Item struct {
	ID       string
	Quantity int
}

// OrderCreated builds the order:created event informing other services of
// the stock changes caused by a new order.
func OrderCreated(orderID, status string, items []Item) Event {
	return Event{
		ID:      uuid.New().String(),
		Subject: SubjectOrderCreated,
		Key:     orderID,
		Payload: encodeOrderPayload(status, items),
	}
}

// OrderCancelled builds the order:cancelled event.
func OrderCancelled(orderID, status string, items []Item) Event {
	return Event{
		ID:      uuid.New().String(),
		Subject: SubjectOrderCancelled,
		Key:     orderID,
		Payload: encodeOrderPayload(status, items),
	}
}

// ProductCreated builds the product:created event.
func ProductCreated(productID, storeID, name string, stock int) Event {
	return Event{
		ID:      uuid.New().String(),
		Subject: SubjectProductCreated,
		Key:     productID,
		Payload: encodeProductPayload(productID, storeID, name, stock),
	}
}

// ProductUpdated builds the product:updated event carrying the fields
// after the edit.
func ProductUpdated(productID, storeID, name string, stock int) Event {
	return Event{
		ID:      uuid.New().String(),
		Subject: SubjectProductUpdated,
		Key:     productID,
		Payload: encodeProductPayload(productID, storeID, name, stock),
	}
}

func encodeProductPayload(productID, storeID, name string, stock int) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(productID)
	e.FieldStart("storeId")
	e.Str(storeID)
	e.FieldStart("name")
	e.Str(name)
	e.FieldStart("stock")
	e.Int(stock)
	e.ObjEnd()
	return e.Bytes()
}

// StoreCreated builds the store:created event.
func StoreCreated(storeID, name string) Event {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(storeID)
	e.FieldStart("name")
	e.Str(name)
	e.ObjEnd()

	return Event{
		ID:      uuid.New().String(),
		Subject: SubjectStoreCreated,
		Key:     storeID,
		Payload: e.Bytes(),
	}
}

// encodeOrderPayload encodes {status, products: [{id, quantity}]}.
func encodeOrderPayload(status string, items []Item) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str(status)
	e.FieldStart("products")
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(it.ID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}
