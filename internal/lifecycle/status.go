// Package lifecycle implements the order status vocabulary, the status
// history kept in order_data, shipping details and reference numbers.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
	Bought    Status = "bought"
	Shipped   Status = "shipped"
	Customs   Status = "customs"
	Ready     Status = "ready"
	Delivered Status = "delivered"
	Cancelled Status = "cancelled"

	// Completed only appears on legacy rows.
	Completed Status = "completed"
)

// Statuses is the display order of the status buttons.
var Statuses = []Status{Pending, Confirmed, Bought, Shipped, Customs, Ready, Delivered, Cancelled}

var (
	ErrUnknownStatus           = errors.New("unknown order status")
	ErrShippingDetailsRequired = errors.New("shipping details are required to mark an order as shipped")
)

// ParseStatus accepts any status a stored row may carry, including the
// legacy completed label.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == Completed || st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// ParseTarget accepts only statuses an order can be moved to.
func ParseTarget(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsFinished groups delivered with the legacy completed label.
func (s Status) IsFinished() bool {
	return s == Delivered || s == Completed
}

func (s Status) String() string {
	return string(s)
}
