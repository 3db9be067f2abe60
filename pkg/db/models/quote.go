package models

import (
	"time"
)

// Quote is a persisted cake-order request. Rows are created once by the
// submission flow and read many times by the view and PDF endpoints;
// they are never updated or deleted.
type Quote struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	FullName    string  `gorm:"column:full_name;not null"`
	Contact     string  `gorm:"column:contact;not null"`
	SocialMedia *string `gorm:"column:social_media"`
	Guests      int     `gorm:"column:guests;not null"`

	CakeType        string  `gorm:"column:cake_type;not null"`
	ThreeMilkFlavor *string `gorm:"column:three_milk_flavor"`
	BreadFlavor     *string `gorm:"column:bread_flavor"`
	FillingFlavor   *string `gorm:"column:filling_flavor"`
	PremiumCake     *string `gorm:"column:premium_cake"`
	DesignChanges   *string `gorm:"column:design_changes"`

	Allergies          bool    `gorm:"column:allergies;not null;default:false"`
	AllergyDescription *string `gorm:"column:allergy_description"`

	DeliveryDate        time.Time `gorm:"column:delivery_date;not null"`
	DeliveryTime        string    `gorm:"column:delivery_time;not null"`
	DeliveryType        string    `gorm:"column:delivery_type;not null"`
	HomeDeliveryAddress *string   `gorm:"column:home_delivery_address"`

	Agreement bool `gorm:"column:agreement;not null"`

	// ImageURLs holds the JSON-encoded, ordered list of stored image URLs.
	// Set once at creation and never mutated afterwards.
	ImageURLs string `gorm:"column:image_urls;not null;default:'[]'"`
}

func (Quote) TableName() string {
	return "quotes"
}
