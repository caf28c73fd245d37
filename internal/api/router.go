package api

import (
	"github.com/gin-gonic/gin"

	"github.com/maggie-r-m-88/commonscapes/internal/api/handler"
	"github.com/maggie-r-m-88/commonscapes/internal/api/middleware"
	"github.com/maggie-r-m-88/commonscapes/internal/config"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
	"github.com/maggie-r-m-88/commonscapes/internal/service"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	importService *service.ImportService,
	searchService *service.SearchService,
	log *logger.Logger,
	cfg *config.ServerConfig,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	importHandler := handler.NewImportHandler(importService)
	searchHandler := handler.NewSearchHandler(searchService)
	imageHandler := handler.NewImageHandler(searchService)
	categoryHandler := handler.NewCategoryHandler(searchService)
	collectionHandler := handler.NewCollectionHandler(searchService)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Ingestion
		v1.POST("/import", importHandler.Import)

		// Search
		v1.POST("/search", searchHandler.Search)
		v1.GET("/search", searchHandler.SearchGet)

		// Images
		v1.GET("/images/:id", imageHandler.GetImage)
		v1.GET("/images/:id/related", imageHandler.Related)
		v1.GET("/images/:id/taxonomy", imageHandler.Taxonomy)

		// Categories
		v1.GET("/categories", categoryHandler.ListCategories)
		v1.GET("/categories/:slug/images", categoryHandler.CategoryImages)

		// Collection and home
		v1.GET("/collection", collectionHandler.Collection)
		v1.GET("/featured/home", collectionHandler.FeaturedHome)
	}

	return r
}
