package models

import "time"

// TemplateLike records that a user likes a template. At most one row per
// (user, template) pair; Template.LikeCount mirrors the row count.
type TemplateLike struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_template_likes_pair,priority:1" json:"user_id"`
	TemplateID string    `gorm:"not null;uniqueIndex:idx_template_likes_pair,priority:2" json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TemplateFavorite records that a user favorited a template.
type TemplateFavorite struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_template_favorites_pair,priority:1" json:"user_id"`
	TemplateID string    `gorm:"not null;uniqueIndex:idx_template_favorites_pair,priority:2" json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
}
