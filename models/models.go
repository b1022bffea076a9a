package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/datatypes"
)

// Run records one reconciliation invocation
type Run struct {
	ID string `gorm:"primaryKey;type:varchar(20)"`

	// Headers involved
	InputHeader  string `gorm:"type:text"`
	TargetHeader string `gorm:"type:text"`
	OutputHeader string `gorm:"type:text"`

	// Checksums for validation
	InputDigest  string `gorm:"type:varchar(64)"` // SHA256 of input header
	TargetDigest string `gorm:"type:varchar(64)"` // SHA256 of target header
	OutputDigest string `gorm:"type:varchar(64)"` // SHA256 of emitted header

	// Statistics
	TargetCount     int `gorm:"default:0"`
	ResolvedCount   int `gorm:"default:0"`
	UnresolvedCount int `gorm:"default:0"`
	InsertedCount   int `gorm:"default:0"`

	// Effective configuration snapshot
	Config datatypes.JSON `gorm:"type:jsonb"`

	DurationMS int64     `gorm:"default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	// Relationships
	Unresolved []UnresolvedType `gorm:"foreignKey:RunID"`
}

// UnresolvedType records one declaration or field left unresolved
type UnresolvedType struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	RunID string `gorm:"type:varchar(20);index"`

	Kind  string `gorm:"type:varchar(20)"`  // class, enum, field
	Owner string `gorm:"type:varchar(255)"` // declaring class for fields
	Name  string `gorm:"type:varchar(255)"`
	Type  string `gorm:"type:varchar(255)"` // original type spelling
}

// TableName customizations for cleaner names
func (Run) TableName() string            { return "runs" }
func (UnresolvedType) TableName() string { return "unresolved_types" }

// NewID returns a short random identifier for a Run row.
func NewID() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "0000000000"
	}
	return hex.EncodeToString(b)
}
