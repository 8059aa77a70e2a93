package domain

import "time"

// Product is a catalog entry. Price is in the smallest currency unit.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
	Image string `json:"image"`
	Phone string `json:"phone"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// CartLine snapshots name, price and seller contact at add time.
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Phone     string `json:"phone,omitempty"`
}

func (l CartLine) Subtotal() int64 { return l.Price * int64(l.Quantity) }

type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// Index returns the position of the line for productID, or -1.
func (c Cart) Index(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

type OrderItem struct {
	ProductID string `json:"product_id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Phone     string `json:"phone,omitempty"`
}

type Order struct {
	ID             string        `json:"order_id"`
	UserID         string        `json:"user_id"`
	UserName       string        `json:"user_name,omitempty"`
	Fullname       string        `json:"fullname"`
	Phone          string        `json:"phone"`
	Items          []OrderItem   `json:"items"`
	Total          int64         `json:"total"`
	PickupLocation string        `json:"pickup_location"`
	Notes          string        `json:"notes,omitempty"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      *time.Time    `json:"updated_at,omitempty"`
}

// ItemsTotal is the sum of price*quantity over the item snapshot.
func (o Order) ItemsTotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

type OrderStats struct {
	TotalOrders      int                   `json:"total_orders"`
	TotalRevenue     int64                 `json:"total_revenue"`
	StatusBreakdown  map[OrderStatus]int   `json:"status_breakdown"`
	PaymentBreakdown map[PaymentStatus]int `json:"payment_breakdown"`
}

type PickupLocation struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	OperatingHours string `json:"operating_hours"`
	Phone          string `json:"phone"`
	Description    string `json:"description,omitempty"`
}
