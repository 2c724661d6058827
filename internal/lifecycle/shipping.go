package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PendingTracking is stored while the carrier has not issued a number yet.
const PendingTracking = "PENDING"

// CarrierCIG requires the VIN suffix for its tracking portal.
const CarrierCIG = "cig"

// VINSuffixLength is the number of trailing VIN characters CIG asks for.
const VINSuffixLength = 6

// Carriers maps carrier codes to the names shown in notes and messages.
var Carriers = map[string]string{
	"cig":      "CIG Shipping",
	"grimaldi": "Grimaldi Lines",
	"hoegh":    "Höegh Autoliners",
	"glovis":   "Hyundai Glovis",
	"ekol":     "Ekol Logistics",
	"other":    "Other",
}

var (
	ErrTrackingRequired  = errors.New("tracking number is required unless awaiting tracking")
	ErrVINSuffixRequired = fmt.Errorf("carrier %s requires the last %d characters of the VIN", CarrierCIG, VINSuffixLength)
)

// ShippingRequest is what the shipping step collects.
type ShippingRequest struct {
	Carrier          string `json:"carrier"`
	TrackingNumber   string `json:"tracking_number"`
	AwaitingTracking bool   `json:"awaiting_tracking"`
	Route            string `json:"route"`
	VINSuffix        string `json:"vin_suffix"`
}

// ShippingDetails is nested under order_data.shipping.
type ShippingDetails struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
	Route          string `json:"route"`
	VINLast4Digits string `json:"vinLast4Digits,omitempty"`
	CreatedAt      string `json:"createdAt"`
	LastUpdated    string `json:"lastUpdated"`
	Note           string `json:"note"`
}

func (r ShippingRequest) normalized() ShippingRequest {
	r.Carrier = strings.ToLower(strings.TrimSpace(r.Carrier))
	r.TrackingNumber = strings.TrimSpace(r.TrackingNumber)
	r.Route = strings.TrimSpace(r.Route)
	r.VINSuffix = strings.ToUpper(strings.TrimSpace(r.VINSuffix))
	if r.AwaitingTracking {
		r.TrackingNumber = PendingTracking
	}
	return r
}

func (r ShippingRequest) Validate() error {
	r = r.normalized()
	if !r.AwaitingTracking && r.TrackingNumber == "" {
		return ErrTrackingRequired
	}
	if r.Carrier == CarrierCIG && len([]rune(r.VINSuffix)) != VINSuffixLength {
		return ErrVINSuffixRequired
	}
	return nil
}

// CarrierName returns the display name for a carrier code.
func CarrierName(code string) string {
	if name, ok := Carriers[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// AwaitingTracking reports whether the shipment still lacks a tracking number.
func (s *ShippingDetails) AwaitingTracking() bool {
	return s != nil && s.TrackingNumber == PendingTracking
}

func shippingNote(r ShippingRequest) string {
	carrier := CarrierName(r.Carrier)
	if carrier == "" {
		carrier = "carrier not set"
	}
	if r.TrackingNumber == PendingTracking {
		return fmt.Sprintf("Shipped via %s - awaiting tracking number", carrier)
	}
	return fmt.Sprintf("Shipped via %s - Tracking: %s", carrier, r.TrackingNumber)
}

// Ship records the shipped transition together with its shipping details.
func Ship(d OrderData, req ShippingRequest, now time.Time) (OrderData, error) {
	if err := req.Validate(); err != nil {
		return d, err
	}
	req = req.normalized()

	stamp := now.UTC().Format(time.RFC3339Nano)
	details := &ShippingDetails{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		Route:          req.Route,
		CreatedAt:      stamp,
		LastUpdated:    stamp,
		Note:           shippingNote(req),
	}
	if req.Carrier == CarrierCIG {
		details.VINLast4Digits = req.VINSuffix
	}
	if d.Shipping != nil && d.Shipping.CreatedAt != "" {
		details.CreatedAt = d.Shipping.CreatedAt
	}

	d = d.record(Shipped, details.Note, now)
	d.Shipping = details
	return d, nil
}

// UpdateTracking fills in a tracking number that was previously deferred.
// The history entry is recorded under the current status, which is left
// unchanged.
func UpdateTracking(d OrderData, tracking string, now time.Time) (OrderData, error) {
	tracking = strings.TrimSpace(tracking)
	if tracking == "" || tracking == PendingTracking {
		return d, ErrTrackingRequired
	}
	if d.Shipping == nil {
		return d, ErrShippingDetailsRequired
	}

	shipping := *d.Shipping
	shipping.TrackingNumber = tracking
	shipping.LastUpdated = now.UTC().Format(time.RFC3339Nano)
	shipping.Note = shippingNote(ShippingRequest{Carrier: shipping.Carrier, TrackingNumber: tracking})

	d = d.record(d.Status, "Tracking number added: "+tracking, now)
	d.Shipping = &shipping
	return d, nil
}
