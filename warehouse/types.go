// Package warehouse holds the fulfilment side of the fixture domain. Its
// types deliberately differ from package store in names, numeric types
// and shape.
package warehouse

import (
	"time"
)

// Address represents a shipping address.
type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
	IsDefault  bool
}

// Customer represents a store customer/user.
type Customer struct {
	ID        uint
	FirstName string
	LastName  string
	Email     string
	Addresses []Address

	// Orders points back at the orders of the customer.
	Orders []Order
}

// Order represents a customer's purchase as the warehouse ships it.
type Order struct {
	ID          uint
	CustomerID  uint
	OrderNumber string
	Status      string // e.g. "pending", "paid", "shipped", "cancelled"
	TotalAmount int64  // in cents
	Currency    string

	ShippingAddress *Address
	Customer        *Customer

	Items      []OrderItem
	Tags       []string
	Attributes map[string]string

	PlacedAt  time.Time
	ShippedAt *time.Time
}

// OrderItem is a line item within an order.
type OrderItem struct {
	ProductID uint
	Name      string
	Quantity  int
	UnitPrice int64
}

// Category mirrors store.Category.
type Category struct {
	Name     string
	Parent   *Category
	Children []Category
}
