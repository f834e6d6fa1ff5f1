package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// CameraHistory is an append-only audit record for a camera.
type CameraHistory struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	CameraID    string            `json:"cameraId" gorm:"column:camera_id;type:varchar(64);not null;index"`
	Type        string            `json:"type" gorm:"type:varchar(20);not null;index"`
	Description string            `json:"description" gorm:"type:text"`
	Date        time.Time         `json:"date" gorm:"not null"`
	Details     datatypes.JSONMap `json:"details" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (CameraHistory) TableName() string {
	return "camera_histories"
}

// Detail returns details[key] as a string, or "" when absent.
func (h CameraHistory) Detail(key string) string {
	if h.Details == nil {
		return ""
	}
	v, ok := h.Details[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
