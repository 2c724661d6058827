package lifecycle

import (
	"encoding/json"
	"time"
)

// HistoryEntry is one line of an order's status timeline.
type HistoryEntry struct {
	Status    Status `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
	Note      string `json:"note"`
}

type CustomerSnapshot struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`
}

type CarSnapshot struct {
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         string `json:"year,omitempty"`
	Budget       string `json:"budget,omitempty"`
	CustomBudget string `json:"customBudget,omitempty"`
}

// OrderData is the semi-structured side record stored next to an order.
type OrderData struct {
	Status        Status            `json:"status,omitempty"`
	StatusHistory []HistoryEntry    `json:"statusHistory"`
	LastUpdated   string            `json:"lastUpdated,omitempty"`
	Shipping      *ShippingDetails  `json:"shipping,omitempty"`
	Customer      *CustomerSnapshot `json:"customer,omitempty"`
	Car           *CarSnapshot      `json:"car,omitempty"`
}

// DateLayout mirrors the short locale date shown in the timeline.
const DateLayout = "1/2/2006"

// ParseOrderData decodes a stored order_data value. Empty input yields an
// empty record.
func ParseOrderData(raw []byte) (OrderData, error) {
	var d OrderData
	if len(raw) == 0 || string(raw) == "null" {
		return d, nil
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return OrderData{}, err
	}
	return d, nil
}

func (d OrderData) Marshal() ([]byte, error) {
	if d.StatusHistory == nil {
		d.StatusHistory = []HistoryEntry{}
	}
	return json.Marshal(d)
}

// Seed starts the timeline of a freshly created order.
func Seed(customer *CustomerSnapshot, car *CarSnapshot, now time.Time) OrderData {
	d := OrderData{Customer: customer, Car: car}
	return d.record(Pending, "Order created", now)
}

// Record appends one history entry for status and refreshes lastUpdated.
// The history is never reordered or pruned.
func (d OrderData) Record(status Status, note string, now time.Time) OrderData {
	return d.record(status, note, now)
}

func (d OrderData) record(status Status, note string, now time.Time) OrderData {
	history := make([]HistoryEntry, len(d.StatusHistory), len(d.StatusHistory)+1)
	copy(history, d.StatusHistory)
	d.StatusHistory = append(history, HistoryEntry{
		Status:    status,
		Timestamp: now.UnixMilli(),
		Date:      now.Format(DateLayout),
		Note:      note,
	})
	d.Status = status
	d.LastUpdated = now.UTC().Format(time.RFC3339Nano)
	return d
}

// Transition moves the order to target. Shipped needs Ship instead.
func Transition(d OrderData, target Status, now time.Time) (OrderData, error) {
	if !target.Valid() {
		return d, ErrUnknownStatus
	}
	if target == Shipped {
		return d, ErrShippingDetailsRequired
	}
	return d.record(target, "Updated status to "+string(target), now), nil
}

// LastEntry returns the most recent history entry, if any.
func (d OrderData) LastEntry() (HistoryEntry, bool) {
	if len(d.StatusHistory) == 0 {
		return HistoryEntry{}, false
	}
	return d.StatusHistory[len(d.StatusHistory)-1], true
}
