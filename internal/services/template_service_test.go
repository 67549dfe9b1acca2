package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
)

func setupTestDB() {
	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}

	// Drop tables if exist to ensure clean state and schema update
	db.Migrator().DropTable(
		&models.User{},
		&models.Template{},
		&models.TemplateVersion{},
		&models.Prompt{},
		&models.TemplateLike{},
		&models.TemplateFavorite{},
	)

	err = db.AutoMigrate(
		&models.User{},
		&models.Template{},
		&models.TemplateVersion{},
		&models.Prompt{},
		&models.TemplateLike{},
		&models.TemplateFavorite{},
	)
	if err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
}

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(mr.Close)
	return mr
}

func TestCreateTemplate(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, version, err := CreateTemplate("alice", TemplateInput{
		Title:       "Code Review",
		Description: "Reviews a diff",
		Visibility:  models.VisibilityPublic,
		Tags:        []string{"python", "coding"},
		Category:    "engineering",
		Content:     "Review this diff: {{diff}}",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, template.ID)
	assert.Equal(t, "alice", template.OwnerID)
	assert.Equal(t, 1, template.CurrentVersion)
	assert.Equal(t, 1, version.Version)
	assert.Equal(t, template.ID, version.TemplateID)
	assert.Equal(t, "Review this diff: {{diff}}", version.Content)

	// Round-trip through Get
	got, err := GetTemplate(template.ID, "alice")
	assert.NoError(t, err)
	assert.NotNil(t, got.LatestVersion)
	assert.Equal(t, "Review this diff: {{diff}}", got.LatestVersion.Content)
}

func TestCreateTemplateValidation(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	_, _, err := CreateTemplate("", TemplateInput{Title: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = CreateTemplate("alice", TemplateInput{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateTemplateDefaults(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, version, err := CreateTemplate("alice", TemplateInput{Title: "Empty"})
	assert.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, template.Visibility)
	assert.Equal(t, models.TemplateTypeUser, template.Type)
	assert.Equal(t, "", version.Content)
}

func TestGetTemplateVisibility(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{
		Title:      "Secret",
		Visibility: models.VisibilityPrivate,
	})
	assert.NoError(t, err)

	// Owner sees it
	_, err = GetTemplate(template.ID, "alice")
	assert.NoError(t, err)

	// Anyone else gets not-found, same as a missing template
	_, err = GetTemplate(template.ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetTemplate(template.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetTemplate("no-such-id", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTemplateAppendsVersionOnContentChange(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Content: "v1 content"})
	assert.NoError(t, err)

	newContent := "v2 content"
	updated, newVersion, err := UpdateTemplate(template.ID, "alice", TemplateUpdate{Content: &newContent})
	assert.NoError(t, err)
	assert.NotNil(t, newVersion)
	assert.Equal(t, 2, newVersion.Version)
	assert.Equal(t, 2, updated.CurrentVersion)

	versions, err := ListTemplateVersions(template.ID)
	assert.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
}

func TestUpdateTemplateSameContentNoNewVersion(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Content: "same"})
	assert.NoError(t, err)

	content := "same"
	_, newVersion, err := UpdateTemplate(template.ID, "alice", TemplateUpdate{Content: &content})
	assert.NoError(t, err)
	assert.Nil(t, newVersion)

	versions, err := ListTemplateVersions(template.ID)
	assert.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestUpdateTemplateMetadataOnly(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "Old", Content: "c"})
	assert.NoError(t, err)

	title := "New"
	visibility := models.VisibilityPublic
	tags := []string{"sql"}
	updated, newVersion, err := UpdateTemplate(template.ID, "alice", TemplateUpdate{
		Title:      &title,
		Visibility: &visibility,
		Tags:       &tags,
	})
	assert.NoError(t, err)
	assert.Nil(t, newVersion)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, models.VisibilityPublic, updated.Visibility)
	assert.Equal(t, 1, updated.CurrentVersion)
}

func TestUpdateTemplateKeepsLikeCountFromConcurrentLike(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T", Visibility: models.VisibilityPublic, Content: "c"})
	assert.NoError(t, err)

	// Emulate a like committing between UpdateTemplate's read and its write:
	// bump the counter and insert the relation on the update's own connection,
	// right before the template row is written back.
	fired := false
	err = database.DB.Callback().Update().Before("gorm:update").Register("inject_like", func(db *gorm.DB) {
		if fired {
			return
		}
		fired = true
		db.Statement.ConnPool.ExecContext(db.Statement.Context,
			"UPDATE templates SET like_count = like_count + 1 WHERE id = ?", template.ID)
		db.Statement.ConnPool.ExecContext(db.Statement.Context,
			"INSERT INTO template_likes (user_id, template_id, created_at) VALUES (?, ?, ?)",
			"bob", template.ID, time.Now())
	})
	assert.NoError(t, err)
	defer database.DB.Callback().Update().Remove("inject_like")

	desc := "metadata change"
	_, _, err = UpdateTemplate(template.ID, "alice", TemplateUpdate{Description: &desc})
	assert.NoError(t, err)
	assert.True(t, fired)

	var saved models.Template
	assert.NoError(t, database.DB.First(&saved, "id = ?", template.ID).Error)
	assert.Equal(t, "metadata change", saved.Description)

	var relations int64
	database.DB.Model(&models.TemplateLike{}).Where("template_id = ?", template.ID).Count(&relations)
	assert.Equal(t, int64(1), relations)
	assert.Equal(t, 1, saved.LikeCount)
}

func TestUpdateTemplateNotOwner(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T"})
	assert.NoError(t, err)

	title := "hijacked"
	_, _, err = UpdateTemplate(template.ID, "bob", TemplateUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteTemplateCascades(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, version, err := CreateTemplate("alice", TemplateInput{
		Title:      "Doomed",
		Visibility: models.VisibilityPublic,
		Content:    "hello {{name}}",
	})
	assert.NoError(t, err)

	_, _, err = SetLike(template.ID, "bob", true)
	assert.NoError(t, err)
	_, err = SetFavorite(template.ID, "bob", true)
	assert.NoError(t, err)
	prompt, err := CreatePrompt("bob", template.ID, version.ID, []string{"world"})
	assert.NoError(t, err)

	assert.NoError(t, DeleteTemplate(template.ID, "alice"))

	_, err = GetTemplate(template.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ListTemplateVersions(template.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetPrompt(prompt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var likes, favorites int64
	database.DB.Model(&models.TemplateLike{}).Where("template_id = ?", template.ID).Count(&likes)
	database.DB.Model(&models.TemplateFavorite{}).Where("template_id = ?", template.ID).Count(&favorites)
	assert.Zero(t, likes)
	assert.Zero(t, favorites)
}

func TestDeleteTemplateNotOwner(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{Title: "T"})
	assert.NoError(t, err)

	assert.ErrorIs(t, DeleteTemplate(template.ID, "bob"), ErrForbidden)
	assert.ErrorIs(t, DeleteTemplate("no-such-id", "alice"), ErrNotFound)
}
