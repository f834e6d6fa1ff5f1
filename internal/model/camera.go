package model

import (
	"time"
)

// Camera is a solar-powered camera unit. AssignedTo is the authoritative
// camera-to-worker assignment.
type Camera struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Model           string    `json:"model" gorm:"type:varchar(100)"`
	Type            string    `json:"type" gorm:"type:varchar(50)"`
	Status          string    `json:"status" gorm:"type:varchar(20);default:'disponible'"`
	Location        string    `json:"location" gorm:"type:varchar(100);index"`
	BatteryLevel    *int      `json:"batteryLevel" gorm:"column:battery_level"`
	LastMaintenance string    `json:"lastMaintenance" gorm:"column:last_maintenance;type:varchar(32)"`
	AssignedTo      *string   `json:"assignedTo" gorm:"column:assigned_to;type:varchar(64);index"`
	SerialNumber    string    `json:"serialNumber" gorm:"column:serial_number;type:varchar(100)"`
	SimNumber       string    `json:"simNumber" gorm:"column:sim_number;type:varchar(50)"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Camera) TableName() string {
	return "cameras"
}

// EntityID returns the caller-supplied identifier.
func (c Camera) EntityID() string { return c.ID }

// InWarehouse reports whether the camera is stored at the warehouse.
func (c Camera) InWarehouse() bool {
	return c.Location == "" || c.Location == Warehouse
}
