package api

import (
	"database/sql"
	"fmt"
	"holdingsbuilder/internal/app"
	"holdingsbuilder/internal/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ApiHandler struct {
	// nil when inputs come from csv files
	Db          *sql.DB
	HoldingsApp app.HoldingsApp
	// bearer tokens are only required when set
	JwtSecret string
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddlware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to holdings builder"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authorized := router.Group("/")
	if m.JwtSecret != "" {
		authorized.Use(m.authMiddleware)
	}
	authorized.POST("/holdings", m.buildHoldings)
	authorized.GET("/schedule", m.schedule)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	router := m.InitializeRouterEngine()
	return router.Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Errorw(
		"request failed",
		"status", code,
		"error", err.Error(),
	)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// logRequestMiddlware gives every request its own logger, stored
// on the request context, and logs the outcome once it is served
func (m ApiHandler) logRequestMiddlware(c *gin.Context) {
	start := time.Now().UTC()
	log := logger.FromContext(c.Request.Context()).With(
		"requestID", uuid.NewString(),
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
	)
	c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), log))

	c.Next()

	log.Infow(
		"served request",
		"status", c.Writer.Status(),
		"ip", c.ClientIP(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
