package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// HTTP endpoints
	EndpointUpload         = "upload"
	EndpointRaceTimes      = "analyze_race_times"
	EndpointTrainingStatus = "analyze_training_status"
	EndpointRecommend      = "recommendations"
	EndpointTrainingPlan   = "training_plan"
	EndpointDataList       = "data_list"
	EndpointHealth         = "health"

	// Ingest outcomes
	IngestInserted = "inserted"
	IngestReplaced = "replaced"
	IngestSkipped  = "skipped"

	// LLM results
	ResultSuccess = "success"
	ResultFailure = "failure"

	// Recommendation sources
	SourceRules = "rules"
	SourceLLM   = "llm"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "status_code"},
	)
)

// Ingestion Metrics
var (
	IngestRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_total",
			Help: "Total number of records processed during ingestion by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	IngestBundlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_bundles_total",
			Help: "Total number of export bundles ingested by kind",
		},
		[]string{"kind"},
	)

	IngestMalformedBundlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_malformed_bundles_total",
			Help: "Total number of export bundles rejected as malformed",
		},
		[]string{"kind"},
	)
)

// LLM Metrics
var (
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM generation attempts by result",
		},
		[]string{"result"},
	)
)

// Recommendation Metrics
var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation sets produced by source",
		},
		[]string{"source"},
	)

	TrainingPlansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "training_plans_total",
			Help: "Total number of training plans generated",
		},
	)
)
