package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas del motor de stock y picking, registradas en el registry por defecto
// y expuestas en /metrics.
var (
	StockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "Ajustes de stock aplicados con éxito, por tipo de transacción",
		},
		[]string{"type"},
	)

	InsufficientStockRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_insufficient_rejections_total",
			Help: "Ajustes rechazados por dejar la cantidad en negativo",
		},
	)

	PickingListsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picking_lists_completed_total",
			Help: "Picking lists que alcanzaron el estado COMPLETED",
		},
	)

	PickingProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "picking_process_duration_seconds",
			Help:    "Duración de cada batch de picks procesado",
			Buckets: prometheus.DefBuckets,
		},
	)
)
