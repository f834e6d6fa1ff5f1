package model

import (
	"time"

	"github.com/lib/pq"
)

// Worker is a field worker who operates cameras at tournaments.
//
// CamerasAssigned is derived from Camera.AssignedTo and is never written
// from request input; see service.AssignmentService.
type Worker struct {
	ID              string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name            string         `json:"name" gorm:"type:varchar(200)"`
	State           string         `json:"state" gorm:"type:varchar(100);index"`
	Status          string         `json:"status" gorm:"type:varchar(20);default:'disponible'"`
	Phone           string         `json:"phone" gorm:"type:varchar(30)"`
	Email           string         `json:"email" gorm:"type:varchar(200)"`
	Specialty       string         `json:"specialty" gorm:"type:varchar(100)"`
	CamerasAssigned pq.StringArray `json:"camerasAssigned" gorm:"column:cameras_assigned;type:text[]"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (Worker) TableName() string {
	return "workers"
}

// EntityID returns the caller-supplied identifier.
func (w Worker) EntityID() string { return w.ID }
