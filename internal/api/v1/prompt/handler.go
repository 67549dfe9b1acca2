package prompt

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/open-prompts/awsome-prompt/internal/api/v1/common/respond"
	"github.com/open-prompts/awsome-prompt/internal/middleware"
	"github.com/open-prompts/awsome-prompt/internal/models"
	"github.com/open-prompts/awsome-prompt/internal/services"
	"github.com/open-prompts/awsome-prompt/internal/utils"
)

// Create godoc
// @Summary Fill a template version into a prompt
// @Tags prompts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   input  body  CreatePromptRequest  true  "Prompt fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts [post]
func Create(c *gin.Context) {
	var req CreatePromptRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prompt, err := services.CreatePrompt(middleware.CallerID(c), req.TemplateID, req.VersionID, req.Variables)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

// Get godoc
// @Summary Get a prompt
// @Tags prompts
// @Produce  json
// @Param   id  path  string  true  "Prompt ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [get]
func Get(c *gin.Context) {
	prompt, err := services.GetPrompt(c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

// List godoc
// @Summary List prompts, newest first
// @Tags prompts
// @Produce  json
// @Param   owner_id     query  string  false  "Filter by owner"
// @Param   template_id  query  string  false  "Filter by template"
// @Param   page_size    query  int     false  "Page size"
// @Param   page_token   query  string  false  "Page token"
// @Success 200 {object} ListPromptsResponse
// @Router /prompts [get]
func List(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	prompts, nextToken, err := services.ListPrompts(
		c.Query("owner_id"), c.Query("template_id"), pageSize, c.Query("page_token"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	if prompts == nil {
		prompts = []models.Prompt{}
	}
	c.JSON(http.StatusOK, ListPromptsResponse{Prompts: prompts, NextPageToken: nextToken})
}

// Delete godoc
// @Summary Delete a prompt
// @Tags prompts
// @Produce  json
// @Security ApiKeyAuth
// @Param   id  path  string  true  "Prompt ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [delete]
func Delete(c *gin.Context) {
	if err := services.DeletePrompt(c.Param("id"), middleware.CallerID(c)); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
