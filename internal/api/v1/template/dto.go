package template

import "github.com/open-prompts/awsome-prompt/internal/models"

type CreateTemplateRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Visibility  string   `json:"visibility" binding:"omitempty,oneof=public private"`
	Type        string   `json:"type" binding:"omitempty,oneof=system user"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Content     string   `json:"content"`
}

// UpdateTemplateRequest uses pointers so absent fields are left unchanged.
type UpdateTemplateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Visibility  *string   `json:"visibility" binding:"omitempty,oneof=public private"`
	Tags        *[]string `json:"tags"`
	Category    *string   `json:"category"`
	Content     *string   `json:"content"`
}

// LikeRequest / FavoriteRequest carry the desired state. An empty body means
// "toggle whatever the current state is".
type LikeRequest struct {
	Liked *bool `json:"liked"`
}

type FavoriteRequest struct {
	Favorited *bool `json:"favorited"`
}

type ListTemplatesResponse struct {
	Templates            []models.Template `json:"templates"`
	NextPageToken        string            `json:"next_page_token,omitempty"`
	PrivateTemplates     []models.Template `json:"private_templates,omitempty"`
	PrivateNextPageToken string            `json:"private_next_page_token,omitempty"`
}
