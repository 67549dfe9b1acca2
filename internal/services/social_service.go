package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
)

// SetLike sets the caller's like state on a template. The write is idempotent:
// the unique (user, template) index makes a repeated insert a no-op, and
// like_count is only adjusted when a relation row was actually inserted or
// deleted, so the counter always equals the relation count. Returns the
// resulting state and like count.
func SetLike(templateID, userID string, liked bool) (bool, int, error) {
	return applyLike(templateID, userID, &liked)
}

// ToggleLike flips the caller's like state. The current state is read inside
// the same transaction that applies the change, so concurrent toggles resolve
// to a well-defined final state.
func ToggleLike(templateID, userID string) (bool, int, error) {
	return applyLike(templateID, userID, nil)
}

func applyLike(templateID, userID string, desired *bool) (bool, int, error) {
	if userID == "" {
		return false, 0, fmt.Errorf("%w: liking requires a signed-in user", ErrUnauthenticated)
	}

	var liked bool
	var likeCount int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var template models.Template
		if err := tx.First(&template, "id = ?", templateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: template %s", ErrNotFound, templateID)
			}
			return err
		}

		if desired != nil {
			liked = *desired
		} else {
			var current int64
			if err := tx.Model(&models.TemplateLike{}).
				Where("user_id = ? AND template_id = ?", userID, templateID).Count(&current).Error; err != nil {
				return err
			}
			liked = current == 0
		}

		if liked {
			rel := models.TemplateLike{UserID: userID, TemplateID: templateID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rel)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				if err := tx.Model(&models.Template{}).Where("id = ?", templateID).
					UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
					return err
				}
			}
		} else {
			res := tx.Where("user_id = ? AND template_id = ?", userID, templateID).
				Delete(&models.TemplateLike{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				if err := tx.Model(&models.Template{}).Where("id = ?", templateID).
					UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&models.Template{}).Where("id = ?", templateID).
			Select("like_count").Scan(&likeCount).Error
	})
	if err != nil {
		return false, 0, err
	}

	return liked, likeCount, nil
}

// SetFavorite sets the caller's favorite state on a template. Same contract as
// SetLike, without a counter.
func SetFavorite(templateID, userID string, favorited bool) (bool, error) {
	return applyFavorite(templateID, userID, &favorited)
}

// ToggleFavorite flips the caller's favorite state, reading the current state
// inside the transaction that applies the change.
func ToggleFavorite(templateID, userID string) (bool, error) {
	return applyFavorite(templateID, userID, nil)
}

func applyFavorite(templateID, userID string, desired *bool) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("%w: favoriting requires a signed-in user", ErrUnauthenticated)
	}

	var favorited bool
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Template{}).Where("id = ?", templateID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: template %s", ErrNotFound, templateID)
		}

		if desired != nil {
			favorited = *desired
		} else {
			var current int64
			if err := tx.Model(&models.TemplateFavorite{}).
				Where("user_id = ? AND template_id = ?", userID, templateID).Count(&current).Error; err != nil {
				return err
			}
			favorited = current == 0
		}

		if favorited {
			rel := models.TemplateFavorite{UserID: userID, TemplateID: templateID}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rel).Error
		}
		return tx.Where("user_id = ? AND template_id = ?", userID, templateID).
			Delete(&models.TemplateFavorite{}).Error
	})
	if err != nil {
		return false, err
	}

	return favorited, nil
}

// IsLiked reports whether the user likes the template. Always false for
// anonymous callers.
func IsLiked(templateID, userID string) bool {
	if userID == "" {
		return false
	}
	var count int64
	database.DB.Model(&models.TemplateLike{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).Count(&count)
	return count > 0
}

// IsFavorited reports whether the user favorited the template.
func IsFavorited(templateID, userID string) bool {
	if userID == "" {
		return false
	}
	var count int64
	database.DB.Model(&models.TemplateFavorite{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).Count(&count)
	return count > 0
}
