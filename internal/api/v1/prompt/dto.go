package prompt

import "github.com/open-prompts/awsome-prompt/internal/models"

type CreatePromptRequest struct {
	TemplateID string   `json:"template_id" binding:"required"`
	VersionID  uint     `json:"version_id"`
	Variables  []string `json:"variables"`
}

type ListPromptsResponse struct {
	Prompts       []models.Prompt `json:"prompts"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}
