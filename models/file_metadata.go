package models

import "time"

// FileMetadata describes a blob stored in the bucket under StorageKey.
type FileMetadata struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	FileName   string    `gorm:"size:255;not null"`
	StorageKey string    `gorm:"size:512;not null;uniqueIndex"`
	PublicURL  string    `gorm:"size:1024;not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime;precision:6"`
}

func (FileMetadata) TableName() string {
	return "file_metadata"
}
