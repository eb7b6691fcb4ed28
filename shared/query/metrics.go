package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "query_cache_lookups_total",
		Help: "Read-path cache lookups by result (hit, miss, shared)",
	},
	[]string{"result"},
)
