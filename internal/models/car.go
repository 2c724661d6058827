package models

import "time"

type Car struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Brand           string    `json:"brand" gorm:"not null"`
	Model           string    `json:"model" gorm:"not null"`
	Year            int       `json:"year"`
	Mileage         int       `json:"mileage"`
	Color           string    `json:"color"`
	VIN             string    `json:"vin" gorm:"column:vin;index"`
	SellingPrice    float64   `json:"selling_price"`
	Currency        string    `json:"currency" gorm:"default:'DZD'"`
	PurchasePrice   float64   `json:"purchase_price"` // DZD
	BuyingPriceKRW  float64   `json:"buying_price_krw" gorm:"column:buying_price_krw"`
	PhotosURLs      PhotoList `json:"photos_urls" gorm:"column:photos_urls;type:text"`
	VideoURL        string    `json:"video_url"`
	Status          string    `json:"status" gorm:"index;default:'available'"`
	AssignedToOrder *uint     `json:"assigned_to_order" gorm:"index"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Car) TableName() string {
	return "car_inventory"
}

type CarStatus string

const (
	CarAvailable CarStatus = "available"
	CarReserved  CarStatus = "reserved"
	CarSold      CarStatus = "sold"
)

var CarStatuses = []CarStatus{CarAvailable, CarReserved, CarSold}
