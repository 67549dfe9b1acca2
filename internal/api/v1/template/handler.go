package template

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/api/v1/common/respond"
	"github.com/open-prompts/awsome-prompt/internal/middleware"
	"github.com/open-prompts/awsome-prompt/internal/models"
	"github.com/open-prompts/awsome-prompt/internal/services"
	"github.com/open-prompts/awsome-prompt/internal/utils"
)

// Create godoc
// @Summary Create a template with its initial version
// @Tags templates
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   input  body  CreateTemplateRequest  true  "Template fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.Response
// @Router /templates [post]
func Create(c *gin.Context) {
	var req CreateTemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template, version, err := services.CreateTemplate(middleware.CallerID(c), services.TemplateInput{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  models.Visibility(req.Visibility),
		Type:        models.TemplateType(req.Type),
		Tags:        req.Tags,
		Category:    req.Category,
		Content:     req.Content,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"template": template,
		"version":  version,
	})
}

// Get godoc
// @Summary Get a template with its current version
// @Tags templates
// @Produce  json
// @Param   id  path  string  true  "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.Response
// @Router /templates/{id} [get]
func Get(c *gin.Context) {
	template, err := services.GetTemplate(c.Param("id"), middleware.CallerID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// List godoc
// @Summary List templates visible to the caller
// @Tags templates
// @Produce  json
// @Param   page_size   query  int     false  "Page size"
// @Param   page_token  query  string  false  "Page token"
// @Param   owner_id    query  string  false  "Filter by owner"
// @Param   visibility  query  string  false  "public or private"
// @Param   category    query  string  false  "Filter by category"
// @Param   tags        query  string  false  "Match-any tag filter, repeatable or comma-separated"
// @Param   my_likes    query  bool    false  "Only templates the caller liked"
// @Param   my_favorites query bool    false  "Only templates the caller favorited"
// @Success 200 {object} ListTemplatesResponse
// @Router /templates [get]
func List(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	result, err := services.ListTemplates(services.ListTemplatesOptions{
		CallerID:    middleware.CallerID(c),
		OwnerID:     c.Query("owner_id"),
		Visibility:  models.Visibility(c.Query("visibility")),
		Category:    c.Query("category"),
		Tags:        queryTags(c),
		MyLikes:     c.Query("my_likes") == "true",
		MyFavorites: c.Query("my_favorites") == "true",
		PageSize:    pageSize,
		PageToken:   c.Query("page_token"),
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	resp := ListTemplatesResponse{
		Templates:            result.Templates,
		NextPageToken:        result.NextPageToken,
		PrivateTemplates:     result.PrivateTemplates,
		PrivateNextPageToken: result.PrivateNextPageToken,
	}
	if resp.Templates == nil {
		resp.Templates = []models.Template{}
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update a template; new content appends a version
// @Tags templates
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id     path  string                 true  "Template ID"
// @Param   input  body  UpdateTemplateRequest  true  "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /templates/{id} [put]
func Update(c *gin.Context) {
	var req UpdateTemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	update := services.TemplateUpdate{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Category:    req.Category,
		Content:     req.Content,
	}
	if req.Visibility != nil {
		visibility := models.Visibility(*req.Visibility)
		update.Visibility = &visibility
	}

	template, newVersion, err := services.UpdateTemplate(c.Param("id"), middleware.CallerID(c), update)
	if err != nil {
		respond.Error(c, err)
		return
	}

	body := gin.H{"template": template}
	if newVersion != nil {
		body["new_version"] = newVersion
	}
	c.JSON(http.StatusOK, body)
}

// Delete godoc
// @Summary Delete a template and everything referencing it
// @Tags templates
// @Produce  json
// @Security ApiKeyAuth
// @Param   id  path  string  true  "Template ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /templates/{id} [delete]
func Delete(c *gin.Context) {
	if err := services.DeleteTemplate(c.Param("id"), middleware.CallerID(c)); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListVersions godoc
// @Summary All versions of a template, oldest first
// @Tags templates
// @Produce  json
// @Param   id  path  string  true  "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.Response
// @Router /templates/{id}/versions [get]
func ListVersions(c *gin.Context) {
	versions, err := services.ListTemplateVersions(c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	if versions == nil {
		versions = []models.TemplateVersion{}
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// Like godoc
// @Summary Set or toggle the caller's like on a template
// @Tags templates
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id  path  string  true  "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.Response
// @Router /templates/{id}/like [post]
func Like(c *gin.Context) {
	templateID := c.Param("id")
	callerID := middleware.CallerID(c)

	var req LikeRequest
	_ = c.ShouldBindJSON(&req) // empty body means toggle

	var (
		isLiked   bool
		likeCount int
		err       error
	)
	if req.Liked != nil {
		isLiked, likeCount, err = services.SetLike(templateID, callerID, *req.Liked)
	} else {
		isLiked, likeCount, err = services.ToggleLike(templateID, callerID)
	}
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_liked":   isLiked,
		"like_count": likeCount,
	})
}

// Favorite godoc
// @Summary Set or toggle the caller's favorite on a template
// @Tags templates
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id  path  string  true  "Template ID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} utils.Response
// @Router /templates/{id}/favorite [post]
func Favorite(c *gin.Context) {
	templateID := c.Param("id")
	callerID := middleware.CallerID(c)

	var req FavoriteRequest
	_ = c.ShouldBindJSON(&req)

	var (
		isFavorited bool
		err         error
	)
	if req.Favorited != nil {
		isFavorited, err = services.SetFavorite(templateID, callerID, *req.Favorited)
	} else {
		isFavorited, err = services.ToggleFavorite(templateID, callerID)
	}
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorited": isFavorited})
}

// queryTags accepts both repeated tags params and a comma-separated value.
func queryTags(c *gin.Context) []string {
	var tags []string
	for _, raw := range c.QueryArray("tags") {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
