package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls счетчик вызовов инструментов
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Общее количество вызовов инструментов",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors счетчик ошибок расчетов
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Количество ошибок расчетов",
		},
		[]string{"tool_name", "error_type"},
	)

	// ToolDuration длительность расчета
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_duration_seconds",
			Help:    "Длительность выполнения инструментов",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"tool_name"},
	)

	// HTTPRequests счетчик HTTP запросов
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Запросы к HTTP API",
		},
		[]string{"method", "route", "status"},
	)

	// RecordsStored счетчик сохраненных расчетов
	RecordsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_stored_total",
			Help: "Сохраненные результаты расчетов",
		},
		[]string{"kind"},
	)
)

// Статусы вызова инструмента
const (
	StatusSuccess         = "success"
	StatusValidationError = "validation_error"
	StatusError           = "error"
)
