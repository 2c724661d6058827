package models

import "time"

type ShippingForm struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	CustomerName      string    `json:"customer_name" gorm:"not null"`
	CustomerPhone     string    `json:"customer_phone"`
	CustomerAddress   string    `json:"customer_address"`
	PassportNumber    string    `json:"passport_number"`
	IDCardNumber      string    `json:"id_card_number"`
	VehicleModel      string    `json:"vehicle_model"`
	VIN               string    `json:"vin" gorm:"column:vin;index"`
	Notes             string    `json:"notes" gorm:"type:text"`
	PDFURL            string    `json:"pdf_url" gorm:"column:pdf_url"`
	PassportPhotoURL  string    `json:"passport_photo_url"`
	IDCardFrontURL    string    `json:"id_card_front_url"`
	IDCardBackURL     string    `json:"id_card_back_url"`
	VehiclePhotosURLs PhotoList `json:"vehicle_photos_urls" gorm:"column:vehicle_photos_urls;type:text"`
	Status            string    `json:"status" gorm:"index;default:'pending'"`
	TransactionID     *uint     `json:"transaction_id" gorm:"index"`
	OrderID           *uint     `json:"order_id" gorm:"index"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (ShippingForm) TableName() string {
	return "shipping_forms"
}

const (
	FormPending   = "pending"
	FormCompleted = "completed"
)
