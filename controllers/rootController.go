package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// rootHandler answers the health probe at the root path
func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "PulmoScan API is running",
		"version": "1.0.0",
	})
}

// SetupRootRoute sets up the unauthenticated health probe
func SetupRootRoute(router *gin.Engine) {
	router.GET("/", rootHandler)
}
