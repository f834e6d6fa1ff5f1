package model

import (
	"time"

	"github.com/lib/pq"
)

// Tournament is a golf tournament that cameras and a worker are sent to.
type Tournament struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string         `json:"name" gorm:"type:varchar(200)"`
	Location  string         `json:"location" gorm:"type:varchar(200)"`
	State     string         `json:"state" gorm:"type:varchar(100);index"`
	Date      string         `json:"date" gorm:"type:varchar(32)"`
	EndDate   string         `json:"endDate" gorm:"column:end_date;type:varchar(32)"`
	Status    string         `json:"status" gorm:"type:varchar(20);default:'pendiente'"`
	Worker    string         `json:"worker" gorm:"type:varchar(200)"`
	WorkerID  *string        `json:"workerId" gorm:"column:worker_id;type:varchar(64)"`
	Cameras   pq.StringArray `json:"cameras" gorm:"type:text[]"`
	Holes     Holes          `json:"holes" gorm:"type:integer[]"`
	Days      int            `json:"days"`
	Field     string         `json:"field" gorm:"type:varchar(200)"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Tournament) TableName() string {
	return "tournaments"
}

// EntityID returns the caller-supplied identifier.
func (t Tournament) EntityID() string { return t.ID }

// HasHole reports whether hole h is part of the tournament.
func (t Tournament) HasHole(h int) bool {
	for _, v := range t.Holes {
		if int(v) == h {
			return true
		}
	}
	return false
}
