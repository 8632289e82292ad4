package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is one event (market, convention, pop-up) owning its own catalog.
type Project struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	StartDate *time.Time `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`
	Archived  bool       `gorm:"column:archived;not null;default:false"`
	Products  []Product  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
