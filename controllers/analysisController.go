package controllers

import (
	"PulmoScan/handlers"
	"PulmoScan/middlewares"
	"PulmoScan/utils"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	Handler *handlers.AnalysisHandler
	Tokens  *utils.TokenMaker
}

func NewAnalysisController(analysisHandler *handlers.AnalysisHandler, tokens *utils.TokenMaker) *AnalysisController {
	return &AnalysisController{
		Handler: analysisHandler,
		Tokens:  tokens,
	}
}

// RegisterRoutes initializes the analysis routes. Every route requires a
// valid bearer token; id-addressed routes additionally enforce ownership
// inside the service layer.
func (ac *AnalysisController) RegisterRoutes(router *gin.Engine) {
	protected := router.Group("/").Use(middlewares.TokenAuthMiddleware(ac.Tokens))
	{
		protected.POST("/analyze", ac.Handler.Analyze)
		protected.GET("/records", ac.Handler.GetRecords)
		protected.GET("/records/:id", ac.Handler.GetRecordDetail)
		protected.GET("/download/report/:id", ac.Handler.DownloadReport)
		protected.GET("/image/:type/:id", ac.Handler.GetImage)
		protected.GET("/stats", ac.Handler.GetStats)
	}
}
