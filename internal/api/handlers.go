package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/database"
	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/service"
)

// Services groups everything the HTTP layer depends on. The composition
// root fills it with the real implementations; handler tests substitute
// whatever slice they need.
type Services struct {
	Auth        service.IAuthService
	Profiles    service.IProfileService
	Preferences service.IPreferenceService
	Suggestions service.ISuggestionService
	Storage     service.IStorageService
	Email       service.IEmailService
}

// HealthHandler reports API liveness. The ping goes through the raw sql.DB
// handle so a wedged ORM pool cannot mask a dead database.
func HealthHandler(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  "database unreachable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Plateful API is running",
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, db *database.DB, svcs Services, redisClient *redis.Client, cfg *config.Config) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthHandler(db))

	// Rate limiting needs redis; without it the API runs unlimited.
	var suggestionLimiter *middleware.RateLimiter
	if redisClient != nil {
		suggestionLimiter = middleware.NewSuggestionRateLimiter(redisClient)
	}

	v1 := router.Group("/api/v1")
	NewAuthHandler(svcs.Auth, svcs.Email).RegisterRoutes(v1)
	NewProfileHandler(svcs.Profiles, svcs.Storage, svcs.Auth).RegisterRoutes(v1)
	NewNotificationsHandler(svcs.Preferences, svcs.Auth, cfg.VAPIDPublicKey).RegisterRoutes(v1)
	NewSuggestionsHandler(svcs.Suggestions, svcs.Auth, suggestionLimiter).RegisterRoutes(v1)
}

// currentUserID pulls the authenticated user out of the request context.
// When it reports false the 401 response has already been written.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}
