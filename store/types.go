// Package store holds the storefront side of the fixture domain used by
// the mapper tests and the mtbmap examples.
package store

import (
	"fmt"
	"time"
)

// Product represents an individual item available for sale.
// Prices are int64 cents to avoid floating-point errors.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Inventory   int
	CreatedAt   time.Time
}

// Address is a postal address as the customer typed it.
type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

// Customer represents the user placing orders.
type Customer struct {
	ID       int64
	Email    string
	FullName string
	Address  *Address
	IsActive bool
}

// Order represents a transaction made by a customer.
type Order struct {
	ID         int64
	CustomerID int64
	Status     OrderStatus
	TotalCents int64
	Items      []OrderItem
	Tags       []string
	Attributes map[string]string
	Shipping   *Address
	OrderedAt  time.Time
}

// Reference is the order number printed on invoices.
func (o *Order) Reference() string {
	return fmt.Sprintf("ST-%06d", o.ID)
}

// Total sums the order lines. It fails on a line with a negative quantity.
func (o *Order) Total() (int64, error) {
	var total int64

	for i, it := range o.Items {
		if it.Quantity < 0 {
			return 0, fmt.Errorf("item %d has quantity %d", i, it.Quantity)
		}

		total += int64(it.Quantity) * it.UnitPrice
	}

	return total, nil
}

// OrderItem represents a specific product line within an order.
// It snapshots the price at the time of purchase.
type OrderItem struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice int64
}

// OrderStatus is a custom type for type-safe status handling.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Category is a node of the catalogue tree.
type Category struct {
	Name     string
	Parent   *Category
	Children []Category
}
