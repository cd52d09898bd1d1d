package api

import (
	"github.com/gin-gonic/gin"

	"github.com/geopredict/relay"
	"github.com/geopredict/relay/api/middleware"
	"github.com/geopredict/relay/config"
)

type Api struct {
	relay      *relay.Relay
	reconciler *relay.Reconciler
	router     *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/transactions", a.RecordTransaction)
	router.GET("/transactions", a.GetAllTransactions)
	router.GET("/transactions/count", a.GetPendingCount)
	router.GET("/transactions/:wallet_tx_id", a.GetTransaction)
	router.POST("/transactions/:wallet_tx_id/reconcile", a.ReconcileTransaction)
	router.POST("/reconciliation/sweep", a.SweepTransactions)

	router.GET("/mode", a.GetTrackingMode)
	router.PUT("/mode", a.UpdateTrackingMode)

	return a.router
}

func NewAPI(r *relay.Relay, rec *relay.Reconciler) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	router := gin.Default()
	router.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		router.Use(middleware.SecretKeyAuthMiddleware())
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{relay: r, reconciler: rec, router: router}
}
