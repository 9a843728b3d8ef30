package models

import "time"

// HealthCheck records one successful /healthz probe. Rows are never updated or deleted.
type HealthCheck struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"column:datetime;not null;autoCreateTime;precision:6"`
}

// TableName keeps the table name stable regardless of GORM naming strategy.
func (HealthCheck) TableName() string {
	return "health_check"
}
