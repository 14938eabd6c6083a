package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/you/faceauthsvc/internal/http/handlers"
	"github.com/you/faceauthsvc/internal/http/middleware"
)

func BuildRouter(fh *handlers.FaceHandlers, jwtmw *middleware.AuthMW, cb middleware.CasbinMiddleware) *gin.Engine {
	r := gin.New(); r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context){ c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/face/login", fh.FaceLogin)
	auth.POST("/face/step-up/verify", fh.StepUpVerify)

	v := r.Group("/").Use(jwtmw.WithJWT(), cb.Enforce())
	v.POST("/auth/face/register", fh.RegisterFace)
	v.POST("/auth/logout", fh.Logout)

	return r
}
