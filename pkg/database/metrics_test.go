package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func describeAll(c prometheus.Collector) []string {
	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)

	var out []string
	for d := range ch {
		out = append(out, d.String())
	}
	return out
}

func TestPoolStatsCollector_Describe(t *testing.T) {
	descs := describeAll(NewPoolStatsCollector(nil, "directory"))

	assert.Len(t, descs, 8)
	for _, d := range descs {
		assert.Contains(t, d, `fqName: "directory_db_pool_`)
	}
}

func TestPoolStatsCollector_DescriptorNames(t *testing.T) {
	joined := strings.Join(describeAll(NewPoolStatsCollector(nil, "directory")), "\n")

	for _, name := range []string{
		"directory_db_pool_acquired_connections",
		"directory_db_pool_idle_connections",
		"directory_db_pool_total_connections",
		"directory_db_pool_max_connections",
		"directory_db_pool_acquire_count_total",
		"directory_db_pool_acquire_duration_seconds_total",
		"directory_db_pool_empty_acquire_count_total",
		"directory_db_pool_canceled_acquire_count_total",
	} {
		assert.Contains(t, joined, name)
	}
}

func TestPoolStatsCollector_ImplementsCollector(t *testing.T) {
	var _ prometheus.Collector = NewPoolStatsCollector(nil, "directory")
}
