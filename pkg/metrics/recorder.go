package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/layout-planner/pkg/layout"
)

// planned entities
const (
	EntityPartition      = "partition"
	EntityPhysicalVolume = "pv"
	EntityLogicalVolume  = "lv"
)

// PlanRecorder counts planned actions and planning failures
type PlanRecorder struct {
	registry *prometheus.Registry

	planActionsMetrics  *prometheus.CounterVec
	planErrorsMetrics   *prometheus.CounterVec
	planWarningsMetrics *prometheus.CounterVec
	lastPlanMetrics     *prometheus.GaugeVec

	logger *log.Entry
}

// NewPlanRecorder creates a recorder with its own registry
func NewPlanRecorder() *PlanRecorder {
	r := &PlanRecorder{
		registry: prometheus.NewRegistry(),
		planActionsMetrics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layout_plan_actions_total",
				Help: "The number of planned actions per entity.",
			},
			[]string{"entity", "action"},
		),
		planErrorsMetrics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layout_plan_errors_total",
				Help: "The number of failed plans per entity and error kind.",
			},
			[]string{"entity", "kind"},
		),
		planWarningsMetrics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layout_plan_warnings_total",
				Help: "The number of plan records carrying a warning.",
			},
			[]string{"entity", "warning"},
		),
		lastPlanMetrics: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "layout_plan_last_timestamp_seconds",
				Help: "The time of the last plan per entity.",
			},
			[]string{"entity"},
		),
		logger: log.WithField("Module", "PlanRecorder"),
	}

	r.registry.MustRegister(r.planActionsMetrics, r.planErrorsMetrics, r.planWarningsMetrics, r.lastPlanMetrics)
	return r
}

func (r *PlanRecorder) record(entity string, actions []layout.Action, err error) {
	r.lastPlanMetrics.WithLabelValues(entity).SetToCurrentTime()
	if err != nil {
		kind := layout.KindName(err)
		r.planErrorsMetrics.WithLabelValues(entity, kind).Inc()
		r.logger.WithFields(log.Fields{"entity": entity, "kind": kind}).WithError(err).Debug("Plan failed")
		return
	}
	for _, action := range actions {
		r.planActionsMetrics.WithLabelValues(entity, string(action)).Inc()
	}
}

// RecordPartitions records a partition plan or its failure
func (r *PlanRecorder) RecordPartitions(plans []layout.PartitionPlan, err error) {
	actions := make([]layout.Action, 0, len(plans))
	for _, plan := range plans {
		actions = append(actions, plan.Action)
		if plan.Warning != "" {
			r.planWarningsMetrics.WithLabelValues(EntityPartition, plan.Warning).Inc()
		}
	}
	r.record(EntityPartition, actions, err)
}

// RecordPVs records a physical volume plan or its failure
func (r *PlanRecorder) RecordPVs(plans []layout.PVPlan, err error) {
	actions := make([]layout.Action, 0, len(plans))
	for _, plan := range plans {
		actions = append(actions, plan.Action)
	}
	r.record(EntityPhysicalVolume, actions, err)
}

// RecordVolumes records a logical volume plan or its failure
func (r *PlanRecorder) RecordVolumes(plans []layout.VolumePlan, err error) {
	actions := make([]layout.Action, 0, len(plans))
	for _, plan := range plans {
		actions = append(actions, plan.Action)
	}
	r.record(EntityLogicalVolume, actions, err)
}

// Handler serves the recorded metrics
func (r *PlanRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry
func (r *PlanRecorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the metrics in the node-exporter textfile format
func (r *PlanRecorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
