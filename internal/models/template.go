package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type TemplateType string

const (
	TemplateTypeSystem TemplateType = "system"
	TemplateTypeUser   TemplateType = "user"
)

// Template represents a versioned prompt template. Content lives in
// TemplateVersion rows; CurrentVersion is the sequence number of the latest one.
type Template struct {
	ID             string                      `gorm:"primarykey;size:36" json:"id"`
	OwnerID        string                      `gorm:"index;not null" json:"owner_id"`
	Title          string                      `gorm:"index;not null" json:"title"`
	Description    string                      `json:"description"`
	Visibility     Visibility                  `gorm:"index;not null;default:'private'" json:"visibility"`
	Type           TemplateType                `gorm:"not null;default:'user'" json:"type"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	Category       string                      `gorm:"index" json:"category"`
	CurrentVersion int                         `gorm:"not null;default:1" json:"current_version"`
	LikeCount      int                         `gorm:"not null;default:0" json:"like_count"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`

	// Caller-relative fields, filled by the service layer
	IsLiked       bool             `gorm:"-" json:"is_liked"`
	IsFavorited   bool             `gorm:"-" json:"is_favorited"`
	LatestVersion *TemplateVersion `gorm:"-" json:"latest_version,omitempty"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TemplateVersion is an immutable snapshot of a template's content.
// Versions form an append-only sequence per template, starting at 1.
type TemplateVersion struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	TemplateID string    `gorm:"not null;uniqueIndex:idx_template_versions_seq,priority:1" json:"template_id"`
	Version    int       `gorm:"not null;uniqueIndex:idx_template_versions_seq,priority:2" json:"version"`
	Content    string    `gorm:"type:text" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
