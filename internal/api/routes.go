package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"selfcc/care-app/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	careService service.CareService,
) {
	authHandler := NewAuthHandler(authService)
	careHandler := NewCareHandler(careService)

	authMiddleware := AuthMiddleware(authService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		// --- Shell ---
		protected.GET("/app", careHandler.GetApp)
		protected.PUT("/app/view", careHandler.Navigate)

		// --- Screens ---
		protected.GET("/dashboard", careHandler.GetDashboard)
		protected.GET("/plan", careHandler.GetPlan)
		protected.GET("/plans", careHandler.GetPlanHistory)
		protected.GET("/buddies", careHandler.GetBuddies)
		protected.GET("/progress", careHandler.GetProgress)

		// --- Exercise Session ---
		sessionGroup := protected.Group("/session")
		{
			sessionGroup.POST("", careHandler.StartSession)
			sessionGroup.GET("", careHandler.GetSession)
			sessionGroup.POST("/next", careHandler.NextExercise)
			sessionGroup.POST("/cancel", careHandler.CancelSession)
			sessionGroup.PATCH("/feedback", careHandler.UpdateFeedback)
			sessionGroup.POST("/breaks", careHandler.AdjustBreaks)
			sessionGroup.POST("/submit", careHandler.SubmitFeedback)
		}
	}
}
