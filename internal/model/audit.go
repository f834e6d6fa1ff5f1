package model

import (
	"time"
)

// LoginAttempt records every login attempt, successful or not.
type LoginAttempt struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(50);index"`
	IP        string    `json:"ip" gorm:"type:varchar(50)"`
	UserAgent string    `json:"userAgent" gorm:"column:user_agent;type:varchar(500)"`
	Success   bool      `json:"success" gorm:"not null;default:false"`
	Reason    string    `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

func (LoginAttempt) TableName() string {
	return "login_attempts"
}
