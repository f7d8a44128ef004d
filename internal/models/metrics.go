package models

import "time"

// SystemMetrics is an aggregated runtime snapshot exposed alongside the
// Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	PlanRunsTotal            uint64    `json:"plan_runs_total"`
	LastPlanDurationMs       float64   `json:"last_plan_duration_ms"`
	LastPlanScheduled        int       `json:"last_plan_scheduled"`
	LastPlanUnscheduled      int       `json:"last_plan_unscheduled"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
