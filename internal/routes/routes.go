package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chats/internal/authz"
	"chats/internal/handlers"
	"chats/internal/metrics"
	"chats/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	tokens middleware.TokenAuthenticator,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	// ---- ops
	r.GET("/healthz", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMW := middleware.AuthMiddleware(tokens)
	members := middleware.RequireRoles(authz.AnyMember...)

	// AUTH
	auth := r.Group("/auth")
	{
		auth.POST("/token", limiter.Handler(), authHandler.Login)
		auth.POST("/register", limiter.Handler(), authHandler.Register)
		auth.GET("/profile_picture/:user_id", authHandler.ProfilePicture)
		auth.GET("/profile/:profile_id", authHandler.Profile)
	}
	me := auth.Group("", authMW, members)
	{
		me.GET("/me", authHandler.Me)
		me.GET("/me/profile_picture", authHandler.MyProfilePicture)
		me.PUT("/register/profile_picture/:user_id", authHandler.UploadProfilePicture)
		me.PUT("/update", authHandler.UpdateProfile)
	}

	// CHAT
	chat := r.Group("/chat")
	{
		// websocket upgrades are served by Stream, plain GETs continue to GetChat
		chat.GET("/:chat_id", chatHandler.Stream, authMW, members, chatHandler.GetChat)
	}
	chatAPI := chat.Group("", authMW, members)
	{
		chatAPI.POST("/add", chatHandler.CreateChat)
		chatAPI.POST("/add_member", chatHandler.AddMember)
		chatAPI.GET("/list", chatHandler.ListChats)
		chatAPI.GET("/get_potential_members/:chat_id", chatHandler.PotentialMembers)
		chatAPI.GET("/messages/:chat_id", chatHandler.Messages)
		chatAPI.GET("/image/:message_id", chatHandler.MessageImage)
	}

	// ADMIN
	admin := r.Group("/admin", authMW)
	{
		admin.GET("/is_admin", members, adminHandler.IsAdmin)
	}
	adminOnly := admin.Group("", middleware.RequireRoles(authz.AdminOnly...))
	{
		adminOnly.GET("/tables", adminHandler.Tables)
		adminOnly.GET("/users", adminHandler.ListUsers)
		adminOnly.DELETE("/users/:user_id", adminHandler.DeleteUser)
	}

	return r
}
