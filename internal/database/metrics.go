package database

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kreitscore_db_query_duration_seconds",
			Help:    "Database query execution time in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation", "table", "status"},
	)

	dbQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kreitscore_db_query_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	dbErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kreitscore_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// slow queries (>1s)
	dbSlowQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kreitscore_db_slow_queries_total",
			Help: "Total number of slow queries (>1 second)",
		},
		[]string{"operation", "table"},
	)

	dbConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kreitscore_db_connection_pool_size",
			Help: "Maximum number of database connections in the pool",
		},
	)

	dbConnectionPoolIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kreitscore_db_connection_pool_idle",
			Help: "Number of idle database connections in the pool",
		},
	)

	dbConnectionPoolInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kreitscore_db_connection_pool_in_use",
			Help: "Number of database connections currently in use",
		},
	)
)

// MetricsPlugin GORM metrics plugin
type MetricsPlugin struct{}

// Name plugin name
func (p *MetricsPlugin) Name() string {
	return "metricsPlugin"
}

// Initialize registers before/after callbacks for all operations
func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	_ = db.Callback().Create().Before("gorm:create").Register("metrics:before_create", beforeCallback)
	_ = db.Callback().Create().After("gorm:create").Register("metrics:after_create", afterCallback)

	_ = db.Callback().Query().Before("gorm:query").Register("metrics:before_query", beforeCallback)
	_ = db.Callback().Query().After("gorm:query").Register("metrics:after_query", afterCallback)

	_ = db.Callback().Update().Before("gorm:update").Register("metrics:before_update", beforeCallback)
	_ = db.Callback().Update().After("gorm:update").Register("metrics:after_update", afterCallback)

	_ = db.Callback().Delete().Before("gorm:delete").Register("metrics:before_delete", beforeCallback)
	_ = db.Callback().Delete().After("gorm:delete").Register("metrics:after_delete", afterCallback)

	_ = db.Callback().Row().Before("gorm:row").Register("metrics:before_row", beforeCallback)
	_ = db.Callback().Row().After("gorm:row").Register("metrics:after_row", afterCallback)

	_ = db.Callback().Raw().Before("gorm:raw").Register("metrics:before_raw", beforeCallback)
	_ = db.Callback().Raw().After("gorm:raw").Register("metrics:after_raw", afterCallback)

	return nil
}

func beforeCallback(db *gorm.DB) {
	db.InstanceSet("metrics:start_time", time.Now())
}

func afterCallback(db *gorm.DB) {
	startTime, ok := db.InstanceGet("metrics:start_time")
	if !ok {
		return
	}

	duration := time.Since(startTime.(time.Time)).Seconds()
	operation := getOperation(db)
	table := db.Statement.Table
	if table == "" {
		table = "unknown"
	}

	status := "success"
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		status = "error"
	}

	dbQueryDuration.WithLabelValues(operation, table, status).Observe(duration)
	dbQueryTotal.WithLabelValues(operation, table, status).Inc()

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		errorType := fmt.Sprintf("%T", db.Error)
		dbErrorsTotal.WithLabelValues(operation, table, errorType).Inc()
	}

	if duration > 1.0 {
		dbSlowQueriesTotal.WithLabelValues(operation, table).Inc()
	}
}

// getOperation extracts the query operation type
func getOperation(db *gorm.DB) string {
	sql := db.Statement.SQL.String()
	if len(sql) >= 6 {
		switch sql[:6] {
		case "SELECT", "select":
			return "SELECT"
		case "INSERT", "insert":
			return "INSERT"
		case "UPDATE", "update":
			return "UPDATE"
		case "DELETE", "delete":
			return "DELETE"
		}
	}
	if sql != "" {
		return "RAW"
	}
	return "UNKNOWN"
}

// UpdateConnectionPoolMetrics refreshes connection pool gauges
func UpdateConnectionPoolMetrics(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	stats := sqlDB.Stats()
	dbConnectionPoolSize.Set(float64(stats.MaxOpenConnections))
	dbConnectionPoolIdle.Set(float64(stats.Idle))
	dbConnectionPoolInUse.Set(float64(stats.InUse))
}

// StartConnectionPoolMetricsCollector polls pool stats until ctx is done
func StartConnectionPoolMetricsCollector(ctx context.Context, db *gorm.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateConnectionPoolMetrics(db)
		}
	}
}
