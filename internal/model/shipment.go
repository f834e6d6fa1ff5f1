package model

import (
	"time"

	"github.com/lib/pq"
)

// Shipment moves a set of cameras between the warehouse and a tournament site.
type Shipment struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Cameras        pq.StringArray `json:"cameras" gorm:"type:text[]"`
	Destination    string         `json:"destination" gorm:"type:varchar(200)"`
	Recipient      string         `json:"recipient" gorm:"type:varchar(200)"`
	Sender         string         `json:"sender" gorm:"type:varchar(200)"`
	Date           string         `json:"date" gorm:"type:varchar(32)"`
	Status         string         `json:"status" gorm:"type:varchar(30)"`
	TrackingNumber string         `json:"trackingNumber" gorm:"column:tracking_number;type:varchar(100)"`
	OriginState    string         `json:"originState" gorm:"column:origin_state;type:varchar(100)"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// EntityID returns the caller-supplied identifier.
func (s Shipment) EntityID() string { return s.ID }
