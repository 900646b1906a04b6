package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolStatter is the part of *pgxpool.Pool the collector reads.
type poolStatter interface {
	Stat() *pgxpool.Stat
}

// PoolStatsCollector exports pgxpool statistics as Prometheus metrics.
type PoolStatsCollector struct {
	pool poolStatter

	acquired    *prometheus.Desc
	idle        *prometheus.Desc
	total       *prometheus.Desc
	max         *prometheus.Desc
	acquires    *prometheus.Desc
	waitSeconds *prometheus.Desc
	emptyWaits  *prometheus.Desc
	canceled    *prometheus.Desc
}

// NewPoolStatsCollector builds a collector whose metric names are prefixed
// with namespace, e.g. directory_db_pool_idle_connections.
func NewPoolStatsCollector(pool *pgxpool.Pool, namespace string) *PoolStatsCollector {
	return newPoolStatsCollector(pool, namespace)
}

func newPoolStatsCollector(pool poolStatter, namespace string) *PoolStatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "db_pool", name), help, nil, nil)
	}
	return &PoolStatsCollector{
		pool:        pool,
		acquired:    desc("acquired_connections", "Connections currently checked out of the pool."),
		idle:        desc("idle_connections", "Connections currently idle in the pool."),
		total:       desc("total_connections", "Connections currently open."),
		max:         desc("max_connections", "Configured pool ceiling."),
		acquires:    desc("acquire_count_total", "Successful connection acquires."),
		waitSeconds: desc("acquire_duration_seconds_total", "Cumulative time spent waiting to acquire."),
		emptyWaits:  desc("empty_acquire_count_total", "Acquires that waited because the pool was empty."),
		canceled:    desc("canceled_acquire_count_total", "Acquires canceled by their context."),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquires
	ch <- c.waitSeconds
	ch <- c.emptyWaits
	ch <- c.canceled
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}

	gauge(c.acquired, float64(s.AcquiredConns()))
	gauge(c.idle, float64(s.IdleConns()))
	gauge(c.total, float64(s.TotalConns()))
	gauge(c.max, float64(s.MaxConns()))
	counter(c.acquires, float64(s.AcquireCount()))
	counter(c.waitSeconds, s.AcquireDuration().Seconds())
	counter(c.emptyWaits, float64(s.EmptyAcquireCount()))
	counter(c.canceled, float64(s.CanceledAcquireCount()))
}

// RegisterPoolMetrics registers a pool collector with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool, namespace string) error {
	return reg.Register(NewPoolStatsCollector(pool, namespace))
}
