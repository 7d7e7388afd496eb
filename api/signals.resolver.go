package api

import (
	"github.com/gin-gonic/gin"
)

func (m ApiHandler) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (m ApiHandler) signals(c *gin.Context) {
	artifact, err := m.ArtifactRepository.ReadSignals()
	if err != nil {
		returnArtifactUnavailable(err, c)
		return
	}
	c.JSON(200, artifact)
}
