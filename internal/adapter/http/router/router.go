package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/http/handler"
	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/http/middleware"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/metrics"
	"github.com/akramsystems/llm-n-class-classifier/internal/usecase"
)

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	ClassifyUC  usecase.ClassificationUsecase
	Client      service.CompletionClient
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	CORSOrigins []string
}

// Setup creates and configures the Gin router
func Setup(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(deps.CORSOrigins...))

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.Client)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	classifyHandler := handler.NewClassifyHandler(deps.ClassifyUC)
	router.POST("/classify", classifyHandler.Classify)

	return router
}
