package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
)

// TemplateInput carries the fields for creating a template.
type TemplateInput struct {
	Title       string
	Description string
	Visibility  models.Visibility
	Type        models.TemplateType
	Tags        []string
	Category    string
	Content     string
}

// TemplateUpdate carries the optional fields for updating a template.
// Nil means "leave unchanged".
type TemplateUpdate struct {
	Title       *string
	Description *string
	Visibility  *models.Visibility
	Tags        *[]string
	Category    *string
	Content     *string
}

// CreateTemplate creates a template together with its initial version
// (sequence 1). Content may be empty.
func CreateTemplate(ownerID string, in TemplateInput) (*models.Template, *models.TemplateVersion, error) {
	if ownerID == "" {
		return nil, nil, fmt.Errorf("%w: owner_id is required", ErrValidation)
	}
	if in.Title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	templateType := in.Type
	if templateType == "" {
		templateType = models.TemplateTypeUser
	}

	template := &models.Template{
		OwnerID:        ownerID,
		Title:          in.Title,
		Description:    in.Description,
		Visibility:     visibility,
		Type:           templateType,
		Tags:           in.Tags,
		Category:       in.Category,
		CurrentVersion: 1,
	}
	version := &models.TemplateVersion{
		Version: 1,
		Content: in.Content,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return err
		}
		version.TemplateID = template.ID
		return tx.Create(version).Error
	})
	if err != nil {
		return nil, nil, err
	}

	invalidateStatsCache()

	return template, version, nil
}

// GetTemplate returns the template with its latest version and the caller's
// like/favorite state attached. A private template read by anyone but its
// owner reports not-found so hidden templates are indistinguishable from
// absent ones.
func GetTemplate(id, callerID string) (*models.Template, error) {
	var template models.Template
	if err := database.DB.First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
		}
		return nil, err
	}

	if template.Visibility == models.VisibilityPrivate && template.OwnerID != callerID {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
	}

	if err := attachLatestVersion(&template); err != nil {
		return nil, err
	}
	attachSocialState(&template, callerID)

	return &template, nil
}

// UpdateTemplate applies metadata changes in place. A new version is appended
// only when content is supplied and differs from the current version's
// content; the template then points at the new version. Only the owner may
// update.
func UpdateTemplate(id, ownerID string, in TemplateUpdate) (*models.Template, *models.TemplateVersion, error) {
	var template models.Template
	if err := database.DB.First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
		}
		return nil, nil, err
	}

	if template.OwnerID != ownerID {
		return nil, nil, fmt.Errorf("%w: not the template owner", ErrForbidden)
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		template.Title = *in.Title
	}
	if in.Description != nil {
		template.Description = *in.Description
	}
	if in.Visibility != nil {
		template.Visibility = *in.Visibility
	}
	if in.Tags != nil {
		template.Tags = *in.Tags
	}
	if in.Category != nil {
		template.Category = *in.Category
	}

	var newVersion *models.TemplateVersion

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if in.Content != nil {
			var latest models.TemplateVersion
			err := tx.Where("template_id = ?", template.ID).
				Order("version desc").First(&latest).Error
			if err != nil {
				return err
			}
			if latest.Content != *in.Content {
				newVersion = &models.TemplateVersion{
					TemplateID: template.ID,
					Version:    latest.Version + 1,
					Content:    *in.Content,
				}
				if err := tx.Create(newVersion).Error; err != nil {
					return err
				}
				template.CurrentVersion = newVersion.Version
			}
		}
		// like_count belongs to the social toggles; writing it back here would
		// revert a like that committed since the template was loaded.
		return tx.Omit("like_count").Save(&template).Error
	})
	if err != nil {
		return nil, nil, err
	}

	invalidateStatsCache()

	return &template, newVersion, nil
}

// DeleteTemplate removes a template and everything hanging off it: versions,
// prompts, likes and favorites. Children go first so an interrupted delete
// never leaves the template pointing at a missing version. Only the owner may
// delete.
func DeleteTemplate(id, ownerID string) error {
	var template models.Template
	if err := database.DB.First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: template %s", ErrNotFound, id)
		}
		return err
	}

	if template.OwnerID != ownerID {
		return fmt.Errorf("%w: not the template owner", ErrForbidden)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateFavorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.Prompt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&template).Error
	})
	if err != nil {
		return err
	}

	invalidateStatsCache()

	return nil
}

// ListTemplateVersions returns all versions of a template, oldest first.
func ListTemplateVersions(id string) ([]models.TemplateVersion, error) {
	var count int64
	if err := database.DB.Model(&models.Template{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
	}

	var versions []models.TemplateVersion
	err := database.DB.Where("template_id = ?", id).Order("version asc").Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func attachLatestVersion(t *models.Template) error {
	var latest models.TemplateVersion
	err := database.DB.Where("template_id = ?", t.ID).Order("version desc").First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	t.LatestVersion = &latest
	return nil
}

func attachSocialState(t *models.Template, callerID string) {
	if callerID == "" {
		return
	}
	t.IsLiked = IsLiked(t.ID, callerID)
	t.IsFavorited = IsFavorited(t.ID, callerID)
}
