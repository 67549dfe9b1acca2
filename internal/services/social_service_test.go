package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
)

func TestSetLikeIdempotent(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{
		Title:      "Likeable",
		Visibility: models.VisibilityPublic,
	})
	assert.NoError(t, err)

	liked, count, err := SetLike(template.ID, "bob", true)
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	// Repeating the same like changes nothing
	liked, count, err = SetLike(template.ID, "bob", true)
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	// Second user
	_, count, err = SetLike(template.ID, "carol", true)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	// Counter always equals the relation count
	var relations int64
	database.DB.Model(&models.TemplateLike{}).Where("template_id = ?", template.ID).Count(&relations)
	assert.Equal(t, int64(2), relations)
}

func TestSetLikeUnlike(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Visibility: models.VisibilityPublic})
	assert.NoError(t, err)

	_, _, err = SetLike(template.ID, "bob", true)
	assert.NoError(t, err)

	liked, count, err := SetLike(template.ID, "bob", false)
	assert.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	// Unliking what was never liked is a no-op
	liked, count, err = SetLike(template.ID, "bob", false)
	assert.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
	assert.False(t, IsLiked(template.ID, "bob"))
}

func TestToggleLike(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Visibility: models.VisibilityPublic})
	assert.NoError(t, err)

	liked, count, err := ToggleLike(template.ID, "bob")
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = ToggleLike(template.ID, "bob")
	assert.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	_, _, err = ToggleLike("no-such-id", "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = ToggleLike(template.ID, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestToggleFavorite(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Visibility: models.VisibilityPublic})
	assert.NoError(t, err)

	favorited, err := ToggleFavorite(template.ID, "bob")
	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.True(t, IsFavorited(template.ID, "bob"))

	favorited, err = ToggleFavorite(template.ID, "bob")
	assert.NoError(t, err)
	assert.False(t, favorited)
	assert.False(t, IsFavorited(template.ID, "bob"))
}

func TestSetLikeErrors(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	_, _, err := SetLike("no-such-id", "bob", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = SetLike("whatever", "", true)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSetFavorite(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Visibility: models.VisibilityPublic})
	assert.NoError(t, err)

	favorited, err := SetFavorite(template.ID, "bob", true)
	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.True(t, IsFavorited(template.ID, "bob"))

	// Idempotent
	_, err = SetFavorite(template.ID, "bob", true)
	assert.NoError(t, err)
	var relations int64
	database.DB.Model(&models.TemplateFavorite{}).Where("template_id = ?", template.ID).Count(&relations)
	assert.Equal(t, int64(1), relations)

	favorited, err = SetFavorite(template.ID, "bob", false)
	assert.NoError(t, err)
	assert.False(t, favorited)
	assert.False(t, IsFavorited(template.ID, "bob"))

	_, err = SetFavorite("no-such-id", "bob", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = SetFavorite(template.ID, "", true)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSocialStateAnonymous(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Visibility: models.VisibilityPublic})
	assert.NoError(t, err)
	_, _, err = SetLike(template.ID, "bob", true)
	assert.NoError(t, err)

	assert.False(t, IsLiked(template.ID, ""))
	assert.False(t, IsFavorited(template.ID, ""))

	// Anonymous Get still sees the count but no personal state
	got, err := GetTemplate(template.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)
	assert.False(t, got.IsLiked)
}
