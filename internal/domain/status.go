package domain

import "strings"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"

	// legacyPending is how older order files spell "waiting for payment".
	legacyPending = "menunggu_pembayaran"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from.Normalize()][to.Normalize()]
}

func (s OrderStatus) Normalize() OrderStatus {
	if string(s) == legacyPending {
		return StatusPending
	}
	return s
}

func (s OrderStatus) Terminal() bool {
	n, ok := validNext[s.Normalize()]
	return ok && len(n) == 0
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s))).Normalize()
	_, ok := validNext[st]
	return st, ok
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch p := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); p {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return p, true
	}
	return "", false
}
