package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/open-prompts/awsome-prompt/internal/models"
)

func TestRenderContent(t *testing.T) {
	cases := []struct {
		name      string
		content   string
		variables []string
		want      string
	}{
		{"basic", "Hello {{name}}, welcome to {{place}}", []string{"Ada", "Go"}, "Hello Ada, welcome to Go"},
		{"fewer variables", "{{a}} {{b}} {{c}}", []string{"1"}, "1 {{b}} {{c}}"},
		{"extra variables", "{{a}}", []string{"1", "2"}, "1"},
		{"no placeholders", "static text", []string{"unused"}, "static text"},
		{"empty placeholder", "x {{}} y", []string{"v"}, "x v y"},
		{"nil variables", "{{a}}", nil, "{{a}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RenderContent(tc.content, tc.variables))
		})
	}
}

func TestCreatePrompt(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, version, err := CreateTemplate("alice", TemplateInput{
		Title:      "Greeter",
		Visibility: models.VisibilityPublic,
		Content:    "Hello {{name}} from {{city}}",
	})
	assert.NoError(t, err)

	prompt, err := CreatePrompt("bob", template.ID, version.ID, []string{"Ada", "London"})
	assert.NoError(t, err)
	assert.NotEmpty(t, prompt.ID)
	assert.Equal(t, "bob", prompt.OwnerID)
	assert.Equal(t, version.ID, prompt.VersionID)
	assert.Equal(t, "Hello Ada from London", prompt.RenderedContent)

	got, err := GetPrompt(prompt.ID)
	assert.NoError(t, err)
	assert.Equal(t, prompt.RenderedContent, got.RenderedContent)
}

func TestCreatePromptDefaultsToCurrentVersion(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{
		Title:      "T",
		Visibility: models.VisibilityPublic,
		Content:    "v1 {{x}}",
	})
	assert.NoError(t, err)
	newContent := "v2 {{x}}"
	_, v2, err := UpdateTemplate(template.ID, "alice", TemplateUpdate{Content: &newContent})
	assert.NoError(t, err)

	prompt, err := CreatePrompt("bob", template.ID, 0, []string{"y"})
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, prompt.VersionID)
	assert.Equal(t, "v2 y", prompt.RenderedContent)
}

func TestCreatePromptFrozenContent(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, version, err := CreateTemplate("alice", TemplateInput{
		Title:      "T",
		Visibility: models.VisibilityPublic,
		Content:    "original {{x}}",
	})
	assert.NoError(t, err)

	prompt, err := CreatePrompt("bob", template.ID, version.ID, []string{"val"})
	assert.NoError(t, err)

	// Later edits never touch existing prompts
	edited := "edited {{x}}"
	_, _, err = UpdateTemplate(template.ID, "alice", TemplateUpdate{Content: &edited})
	assert.NoError(t, err)

	got, err := GetPrompt(prompt.ID)
	assert.NoError(t, err)
	assert.Equal(t, "original val", got.RenderedContent)
}

func TestCreatePromptValidation(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, _, err := CreateTemplate("alice", TemplateInput{
		Title:      "A",
		Visibility: models.VisibilityPublic,
		Content:    "a",
	})
	assert.NoError(t, err)
	_, otherVersion, err := CreateTemplate("alice", TemplateInput{
		Title:      "B",
		Visibility: models.VisibilityPublic,
		Content:    "b",
	})
	assert.NoError(t, err)

	_, err = CreatePrompt("", template.ID, 0, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = CreatePrompt("bob", "", 0, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = CreatePrompt("bob", "no-such-id", 0, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// A version from another template is rejected
	_, err = CreatePrompt("bob", template.ID, otherVersion.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreatePromptHiddenTemplate(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, version, err := CreateTemplate("alice", TemplateInput{
		Title:      "Secret",
		Visibility: models.VisibilityPrivate,
		Content:    "s",
	})
	assert.NoError(t, err)

	_, err = CreatePrompt("bob", template.ID, version.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner can materialize their own private template
	_, err = CreatePrompt("alice", template.ID, version.ID, nil)
	assert.NoError(t, err)
}

func TestListPrompts(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	t1, v1, err := CreateTemplate("alice", TemplateInput{Title: "A", Visibility: models.VisibilityPublic, Content: "a"})
	assert.NoError(t, err)
	t2, v2, err := CreateTemplate("alice", TemplateInput{Title: "B", Visibility: models.VisibilityPublic, Content: "b"})
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = CreatePrompt("bob", t1.ID, v1.ID, nil)
		assert.NoError(t, err)
	}
	_, err = CreatePrompt("bob", t2.ID, v2.ID, nil)
	assert.NoError(t, err)
	_, err = CreatePrompt("carol", t1.ID, v1.ID, nil)
	assert.NoError(t, err)

	prompts, _, err := ListPrompts("bob", "", 0, "")
	assert.NoError(t, err)
	assert.Len(t, prompts, 4)

	prompts, _, err = ListPrompts("bob", t1.ID, 0, "")
	assert.NoError(t, err)
	assert.Len(t, prompts, 3)

	prompts, _, err = ListPrompts("", t1.ID, 0, "")
	assert.NoError(t, err)
	assert.Len(t, prompts, 4)

	// Pagination
	page, next, err := ListPrompts("bob", "", 2, "")
	assert.NoError(t, err)
	assert.Len(t, page, 2)
	assert.NotEmpty(t, next)
	page, next, err = ListPrompts("bob", "", 2, next)
	assert.NoError(t, err)
	assert.Len(t, page, 2)
	page, _, err = ListPrompts("bob", "", 2, next)
	assert.NoError(t, err)
	assert.Empty(t, page)
}

func TestDeletePrompt(t *testing.T) {
	setupTestDB()
	setupTestRedis(t)

	template, version, err := CreateTemplate("alice", TemplateInput{Title: "T", Visibility: models.VisibilityPublic, Content: "c"})
	assert.NoError(t, err)
	prompt, err := CreatePrompt("bob", template.ID, version.ID, nil)
	assert.NoError(t, err)

	assert.ErrorIs(t, DeletePrompt(prompt.ID, "alice"), ErrForbidden)
	assert.NoError(t, DeletePrompt(prompt.ID, "bob"))
	_, err = GetPrompt(prompt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeletePrompt(prompt.ID, "bob"), ErrNotFound)
}
