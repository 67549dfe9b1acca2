package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"gorm.io/gorm"

	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
)

var placeholderRegex = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// RenderContent substitutes variables into {{...}} placeholders positionally,
// in order of occurrence. When there are fewer variables than placeholders the
// remaining placeholders stay verbatim; extra variables are ignored.
func RenderContent(content string, variables []string) string {
	next := 0
	return placeholderRegex.ReplaceAllStringFunc(content, func(match string) string {
		if next < len(variables) {
			v := variables[next]
			next++
			return v
		}
		return match
	})
}

// CreatePrompt materializes a template version for the caller. The version
// must belong to the template; versionID 0 selects the current version. The
// template must be visible to the caller, and the rendered content is frozen
// here: later template edits do not touch existing prompts.
func CreatePrompt(callerID, templateID string, versionID uint, variables []string) (*models.Prompt, error) {
	if callerID == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrValidation)
	}
	if templateID == "" {
		return nil, fmt.Errorf("%w: template_id is required", ErrValidation)
	}

	var template models.Template
	if err := database.DB.First(&template, "id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: template %s", ErrNotFound, templateID)
		}
		return nil, err
	}
	if template.Visibility == models.VisibilityPrivate && template.OwnerID != callerID {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, templateID)
	}

	var version models.TemplateVersion
	if versionID == 0 {
		err := database.DB.Where("template_id = ?", templateID).Order("version desc").First(&version).Error
		if err != nil {
			return nil, err
		}
	} else {
		err := database.DB.Where("id = ? AND template_id = ?", versionID, templateID).First(&version).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: version %d does not belong to template %s", ErrValidation, versionID, templateID)
			}
			return nil, err
		}
	}

	if variables == nil {
		variables = []string{}
	}

	prompt := &models.Prompt{
		TemplateID:      templateID,
		VersionID:       version.ID,
		OwnerID:         callerID,
		Variables:       variables,
		RenderedContent: RenderContent(version.Content, variables),
	}
	if err := database.DB.Create(prompt).Error; err != nil {
		return nil, err
	}

	return prompt, nil
}

// GetPrompt returns a prompt by id.
func GetPrompt(id string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: prompt %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &prompt, nil
}

// ListPrompts returns prompts matching all supplied filters, newest first.
func ListPrompts(ownerID, templateID string, pageSize int, pageToken string) ([]models.Prompt, string, error) {
	limit := pageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := parseOffset(pageToken)

	db := database.DB.Model(&models.Prompt{})
	if ownerID != "" {
		db = db.Where("owner_id = ?", ownerID)
	}
	if templateID != "" {
		db = db.Where("template_id = ?", templateID)
	}

	var prompts []models.Prompt
	if err := db.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&prompts).Error; err != nil {
		return nil, "", err
	}

	nextToken := ""
	if len(prompts) == limit {
		nextToken = strconv.Itoa(offset + limit)
	}
	return prompts, nextToken, nil
}

// DeletePrompt removes a prompt. Only the owner may delete.
func DeletePrompt(id, ownerID string) error {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: prompt %s", ErrNotFound, id)
		}
		return err
	}

	if prompt.OwnerID != ownerID {
		return fmt.Errorf("%w: not the prompt owner", ErrForbidden)
	}

	return database.DB.Delete(&prompt).Error
}
