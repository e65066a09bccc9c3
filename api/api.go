package api

import (
	"github.com/gin-gonic/gin"

	pharmarecon "github.com/Djamyahia/pharmarecon"
)

type Api struct {
	engine *pharmarecon.Reconciler
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/sessions", a.CreateSession)
	router.GET("/sessions/:id", a.GetSession)
	router.GET("/sessions/:id/pending", a.GetPendingRows)
	router.POST("/sessions/:id/resolve", a.ResolveRow)
	router.POST("/sessions/:id/export", a.ExportMatched)
	router.DELETE("/sessions/:id", a.AbandonSession)

	return router
}

func NewAPI(engine *pharmarecon.Reconciler) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{engine: engine, router: r}
}
