package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Prompt is a materialized instance of one template version. RenderedContent is
// frozen at creation time and is not affected by later template edits.
type Prompt struct {
	ID              string                      `gorm:"primarykey;size:36" json:"id"`
	TemplateID      string                      `gorm:"index;not null" json:"template_id"`
	VersionID       uint                        `gorm:"not null" json:"version_id"`
	OwnerID         string                      `gorm:"index;not null" json:"owner_id"`
	Variables       datatypes.JSONSlice[string] `json:"variables"`
	RenderedContent string                      `gorm:"type:text" json:"rendered_content"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
