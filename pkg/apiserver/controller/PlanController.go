package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/layout-planner/pkg/apiserver/api"
	"github.com/hwameistor/layout-planner/pkg/layout"
	"github.com/hwameistor/layout-planner/pkg/metrics"
)

type IPlanController interface {
	PartitionPlan(ctx *gin.Context)
	PVPlan(ctx *gin.Context)
	VolumePlan(ctx *gin.Context)
}

// PlanController
type PlanController struct {
	recorder *metrics.PlanRecorder
	logger   *log.Entry
}

func NewPlanController(recorder *metrics.PlanRecorder) IPlanController {
	return &PlanController{
		recorder: recorder,
		logger:   log.WithField("Module", "PlanController"),
	}
}

// PartitionPlan godoc
// @Summary     Plan the partitions of one disk
// @Tags        Plan
// @Param       body body api.PartitionPlanReqBody true "requested and observed partitions"
// @Accept      json
// @Produce     json
// @Success     200 {object}  api.PartitionPlanRspBody
// @Failure     400 {object}  api.RspFailBody "bad request"
// @Failure     422 {object}  api.RspFailBody "planning failed"
// @Router      /plan/partitions [post]
func (c *PlanController) PartitionPlan(ctx *gin.Context) {
	var body api.PartitionPlanReqBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}
	if body.Label != "" && !layout.IsSupportedTable(body.Label) {
		badRequest(ctx, fmt.Errorf("unsupported partition table label %q", body.Label))
		return
	}

	plans, err := layout.ValidatePartitions(body.Observed, body.Partitions, body.Label, body.AllowGaps, body.RequireExisting)
	c.recorder.RecordPartitions(plans, err)
	if err != nil {
		c.planFailed(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.PartitionPlanRspBody{Plans: plans})
}

// PVPlan godoc
// @Summary     Plan the physical volumes of one volume group
// @Tags        Plan
// @Param       body body api.PVPlanReqBody true "requested paths and LVM report"
// @Accept      json
// @Produce     json
// @Success     200 {object}  api.PVPlanRspBody
// @Failure     400 {object}  api.RspFailBody "bad request"
// @Failure     422 {object}  api.RspFailBody "planning failed"
// @Router      /plan/pvs [post]
func (c *PlanController) PVPlan(ctx *gin.Context) {
	var body api.PVPlanReqBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	plans, err := layout.ValidatePVs(&body.LVM, body.Paths, body.VG)
	c.recorder.RecordPVs(plans, err)
	if err != nil {
		c.planFailed(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.PVPlanRspBody{Plans: plans})
}

// VolumePlan godoc
// @Summary     Plan the logical volumes of one volume group
// @Tags        Plan
// @Param       body body api.VolumePlanReqBody true "requested volumes, LVM report and devices"
// @Accept      json
// @Produce     json
// @Success     200 {object}  api.VolumePlanRspBody
// @Failure     400 {object}  api.RspFailBody "bad request"
// @Failure     422 {object}  api.RspFailBody "planning failed"
// @Router      /plan/volumes [post]
func (c *PlanController) VolumePlan(ctx *gin.Context) {
	var body api.VolumePlanReqBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	plans, err := layout.ValidateVolumes(body.Volumes, &body.LVM, body.Devices)
	c.recorder.RecordVolumes(plans, err)
	if err != nil {
		c.planFailed(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.VolumePlanRspBody{Plans: plans})
}

func (c *PlanController) planFailed(ctx *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	var planErr *layout.PlanError
	if !errors.As(err, &planErr) {
		status = http.StatusInternalServerError
	}

	c.logger.WithFields(log.Fields{"path": ctx.FullPath(), "kind": layout.KindName(err)}).WithError(err).Debug("Plan failed")
	ctx.JSON(status, api.RspFailBody{
		ErrCode: status,
		Kind:    layout.KindName(err),
		Desc:    err.Error(),
	})
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, api.RspFailBody{
		ErrCode: http.StatusBadRequest,
		Desc:    "invalid request body: " + err.Error(),
	})
}
