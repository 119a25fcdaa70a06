package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/types"
)

// SuggestionsHandler serves LLM-backed meal suggestions and similarity
// search over previously generated meals.
type SuggestionsHandler struct {
	suggestions service.ISuggestionService
	auth        service.IAuthService
	rateLimiter *middleware.RateLimiter
}

func NewSuggestionsHandler(suggestions service.ISuggestionService, auth service.IAuthService, rateLimiter *middleware.RateLimiter) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestions, auth: auth, rateLimiter: rateLimiter}
}

func (h *SuggestionsHandler) RegisterRoutes(router *gin.RouterGroup) {
	suggestions := router.Group("/suggestions")
	suggestions.Use(middleware.AuthMiddleware(h.auth))
	{
		suggestions.GET("", h.List)
		suggestions.GET("/similar", h.Similar)

		// Generation burns an LLM call, so it alone carries the rate limit.
		generate := suggestions.Group("")
		if h.rateLimiter != nil {
			generate.Use(h.rateLimiter.RateLimitMiddleware())
		}
		generate.POST("", h.Generate)
	}
}

// Generate asks the model for a meal matching the user's query and dietary
// profile, embeds it and stores it.
func (h *SuggestionsHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.SuggestMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	suggestion, err := h.suggestions.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnusableSuggestion) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "the model returned an unusable suggestion, please try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate suggestion"})
		return
	}

	c.JSON(http.StatusCreated, suggestion)
}

// List returns the user's suggestion history, newest first.
func (h *SuggestionsHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	suggestions, err := h.suggestions.List(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list suggestions"})
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// Similar runs a vector similarity search over the user's stored suggestions.
func (h *SuggestionsHandler) Similar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	suggestions, err := h.suggestions.Similar(c.Request.Context(), userID, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search suggestions"})
		return
	}

	c.JSON(http.StatusOK, suggestions)
}
