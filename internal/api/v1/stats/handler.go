package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/api/v1/common/respond"
	"github.com/open-prompts/awsome-prompt/internal/middleware"
	"github.com/open-prompts/awsome-prompt/internal/models"
	"github.com/open-prompts/awsome-prompt/internal/services"
)

// Categories godoc
// @Summary Category counts over the public scope, merged with the caller's private templates
// @Tags stats
// @Produce  json
// @Param   owner_id  query  string  false  "Merge in this owner's private templates (must be the caller)"
// @Success 200 {object} map[string]interface{}
// @Router /categories [get]
func Categories(c *gin.Context) {
	categories, err := services.ListCategories(statsOwner(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	if categories == nil {
		categories = []models.CategoryStat{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Tags godoc
// @Summary Tag counts over the public scope, merged with the caller's private templates
// @Tags stats
// @Produce  json
// @Param   owner_id  query  string  false  "Merge in this owner's private templates (must be the caller)"
// @Success 200 {object} map[string]interface{}
// @Router /tags [get]
func Tags(c *gin.Context) {
	tags, err := services.ListTags(statsOwner(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	if tags == nil {
		tags = []models.TagStat{}
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// statsOwner honors the owner_id param only for the authenticated owner, so
// private counts never leak to other callers.
func statsOwner(c *gin.Context) string {
	ownerID := c.Query("owner_id")
	if ownerID != "" && ownerID == middleware.CallerID(c) {
		return ownerID
	}
	return ""
}
