package models

import "time"

// OrderStatus represents all possible states of a storefront order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// Actor names who triggered a status change
type Actor string

const (
	ActorSystem   Actor = "system"
	ActorAdmin    Actor = "admin"
	ActorCustomer Actor = "customer"
)

type Order struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id,omitempty"`
	UserName          string         `json:"user_name,omitempty"`
	Lines             []CartLine     `json:"lines"`
	Subtotal          float64        `json:"subtotal"`
	Tax               float64        `json:"tax"`
	DeliveryFee       float64        `json:"delivery_fee"`
	Total             float64        `json:"total"`
	DeliveryAddress   string         `json:"delivery_address"`
	PaymentMethod     PaymentMethod  `json:"payment_method"`
	Status            OrderStatus    `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	EstimatedDelivery time.Time      `json:"estimated_delivery"`
	History           []StatusChange `json:"history,omitempty"`
}

// StatusChange tracks every status change of an order
type StatusChange struct {
	From OrderStatus `json:"from,omitempty"`
	To   OrderStatus `json:"to"`
	By   Actor       `json:"by"`
	At   time.Time   `json:"at"`
	Note string      `json:"note,omitempty"`
}
