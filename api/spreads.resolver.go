package api

import (
	"github.com/gin-gonic/gin"
)

func (m ApiHandler) spreads(c *gin.Context) {
	spreads, err := m.ArtifactRepository.ReadSpreads()
	if err != nil {
		returnArtifactUnavailable(err, c)
		return
	}
	c.JSON(200, spreads)
}
