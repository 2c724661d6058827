package models

import (
	"time"

	"dealership/internal/lifecycle"

	"gorm.io/datatypes"
)

type Order struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	ReferenceNumber string         `json:"reference_number" gorm:"uniqueIndex;not null"`
	CustomerName    string         `json:"customer_name" gorm:"not null"`
	CustomerPhone   string         `json:"customer_phone"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerCity    string         `json:"customer_city"`
	CustomerAddress string         `json:"customer_address"`
	CarBrand        string         `json:"car_brand"`
	CarModel        string         `json:"car_model"`
	CarYear         string         `json:"car_year"`
	Budget          string         `json:"budget"`        // enumerated bucket, or "custom"
	CustomBudget    string         `json:"custom_budget"` // free text when Budget is custom
	Notes           string         `json:"notes" gorm:"type:text"`
	Status          string         `json:"status" gorm:"index;default:'pending'"`
	OrderData       datatypes.JSON `json:"order_data" gorm:"type:jsonb"`
	AssignedCarID   *uint          `json:"assigned_car_id" gorm:"index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Data decodes the order_data column.
func (o *Order) Data() (lifecycle.OrderData, error) {
	return lifecycle.ParseOrderData(o.OrderData)
}

// SetData encodes d into order_data and mirrors its status on the row.
func (o *Order) SetData(d lifecycle.OrderData) error {
	raw, err := d.Marshal()
	if err != nil {
		return err
	}
	o.OrderData = datatypes.JSON(raw)
	if d.Status != "" {
		o.Status = string(d.Status)
	}
	return nil
}

// Budget buckets offered by the intake form.
var BudgetBuckets = []string{
	"under_2m", "2m_3m", "3m_4m", "4m_5m", "5m_7m", "over_7m", "custom",
}
