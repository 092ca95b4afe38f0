package router

import (
	"quixellMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations")

	reco.POST("", handler.PostRecommendations)
	reco.GET("/:user_id", handler.GetRecommendations)
	reco.GET("/similar-items/:id", handler.SimilarItems)
	reco.GET("/similar-users/:user_id", handler.SimilarUsers)
	reco.GET("/known-positives/:user_id", handler.KnownPositives)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler) {
	products := api.Group("/products")

	products.GET("", handler.ListProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct)
	products.PUT("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)
}

func SetupPricingRoutes(api *echo.Group, handler *rest.PricingHandler) {
	api.POST("/optimize", handler.Optimize)
	api.POST("/optimize/products/:id", handler.OptimizeProduct)
}

func SetupPromotionRoutes(api *echo.Group, handler *rest.PromotionHandler) {
	api.GET("/promotion/predict-promotions", handler.PredictPromotions)
}

func SetupSalesRoutes(api *echo.Group, handler *rest.SalesHandler) {
	sales := api.Group("/sales-forecasting")

	sales.GET("/monthly-sales", handler.MonthlySales)
	sales.GET("/category-sales", handler.CategorySales)
	sales.GET("/sales-trend", handler.SalesTrend)
	sales.GET("/seasonal-decompose", handler.SeasonalDecompose)
	sales.GET("/combined-sales", handler.CombinedSales)
}

func SetupTrackingRoutes(api *echo.Group, handler *rest.TrackingHandler, rateLimit echo.MiddlewareFunc) {
	tracking := api.Group("/tracking")

	tracking.POST("/impression/:user_id/:product_id", handler.RecordImpression, rateLimit)
	tracking.POST("/click/:user_id/:product_id", handler.RecordClick, rateLimit)
	tracking.POST("/events", handler.RecordEvent, rateLimit)
	tracking.GET("/metrics/:metric", handler.Metric)
	tracking.GET("/conversion-rates", handler.ConversionRates)
}

func SetupDemographicsRoutes(api *echo.Group, handler *rest.DemographicsHandler) {
	demo := api.Group("/user-demo-data/demographics")

	demo.GET("/:user_id", handler.GetDemographics)
	demo.PUT("/update/:user_id", handler.UpdateDemographics)
}

func SetupDiscoveryRoutes(api *echo.Group, handler *rest.DiscoveryHandler) {
	discovery := api.Group("/discovery")

	discovery.POST("/user-preference", handler.SavePreference)
	discovery.GET("/categories/random", handler.RandomCategory)
	discovery.GET("/categories/:category/products", handler.ProductsInCategory)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, adminOnly)

	admin.POST("/recommendations/refresh", handler.RefreshRecommendations)
	admin.POST("/models/reload", handler.ReloadModel)
	admin.POST("/forecasts/invalidate", handler.InvalidateForecasts)
}
