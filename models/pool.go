package models

import (
	"time"
)

type Pool struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"` // immutable after creation
	OwnerID   uint      `json:"owner_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Owner        User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:PoolID"`
}
