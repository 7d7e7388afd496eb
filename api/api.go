package api

import (
	"fmt"

	"stockhome/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ApiHandler serves the published artifacts to the rendering layer. It never
// computes anything itself; the screener owns all derivation.
type ApiHandler struct {
	ArtifactRepository repository.ArtifactRepository
}

func (m ApiHandler) StartApi(port int) error {
	router := m.Router()
	return router.Run(fmt.Sprintf(":%d", port))
}

func (m ApiHandler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/health", m.health)
	router.GET("/signals", m.signals)
	router.GET("/spreads", m.spreads)

	return router
}

// returnArtifactUnavailable tells the front end to fall back to its empty
// state rather than crash on a missing or half-baked artifact.
func returnArtifactUnavailable(err error, c *gin.Context) {
	c.AbortWithStatusJSON(503, gin.H{
		"error": err.Error(),
	})
}
