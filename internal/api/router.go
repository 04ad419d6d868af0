package api

import (
	"gate_access/internal/api/handler"
	"gate_access/internal/api/middleware"
	"gate_access/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	authService *service.AuthService,
	memberService *service.MemberService,
	monitorService *service.MonitorService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint (no auth for the real-time connection)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		memberH := handler.NewMemberHandler(memberService)
		memberRoutes := v1.Group("/members")
		{
			memberRoutes.POST("", authMw.AuthorizeRole("admin", "operator"), memberH.CreateMember)
			memberRoutes.GET("", memberH.GetAllMembers)
			memberRoutes.GET("/check/:plate", memberH.CheckPlate)
		}

		sessionH := handler.NewSessionHandler(monitorService)
		sessionRoutes := v1.Group("/sessions")
		{
			sessionRoutes.GET("", sessionH.FindSessions)
			sessionRoutes.GET("/:id", sessionH.GetSessionByID)
		}

		monitorH := handler.NewMonitorHandler(monitorService)
		monitorRoutes := v1.Group("/monitor")
		{
			monitorRoutes.GET("/status", monitorH.GetStatus)
			monitorRoutes.GET("/captures", monitorH.GetRecentCaptures)
			monitorRoutes.GET("/access-logs", monitorH.GetRecentAccessLogs)
		}
	}
	return r
}
