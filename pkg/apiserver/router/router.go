package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/layout-planner/pkg/apiserver/controller"
	"github.com/hwameistor/layout-planner/pkg/metrics"
)

// RequestIDHeader carries the id of every planning request
const RequestIDHeader = "X-Request-Id"

func CollectRoute(r *gin.Engine, recorder *metrics.PlanRecorder) *gin.Engine {
	log.Debug("CollectRoute start ...")

	r.GET("/metrics", gin.WrapH(recorder.Handler()))

	v1 := r.Group("/apis/layout/v1")
	v1.Use(requestID(), logREST())

	planController := controller.NewPlanController(recorder)
	v1.POST("/plan/partitions", planController.PartitionPlan)
	v1.POST("/plan/pvs", planController.PVPlan)
	v1.POST("/plan/volumes", planController.VolumePlan)

	return r
}

func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// logREST logs every planning call
func logREST() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		log.WithFields(log.Fields{
			"request": ctx.Writer.Header().Get(RequestIDHeader),
			"status":  ctx.Writer.Status(),
		}).Debugf("%s  %s  %s", ctx.Request.Method, ctx.Request.RequestURI, time.Since(start))
	}
}
