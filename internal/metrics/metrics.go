package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Extractions     *prometheus.CounterVec
	Summaries       *prometheus.CounterVec
	SpeechRequests  *prometheus.CounterVec
	VideoJobs       *prometheus.CounterVec
	VideoPolls      prometheus.Counter
	MediaSavedBytes *prometheus.CounterVec
	PipelineJobs    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newscast_extractions_total",
			Help: "Article extractions by result.",
		}, []string{"result"}),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newscast_summaries_total",
			Help: "Summaries generated by result.",
		}, []string{"result"}),
		SpeechRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newscast_speech_requests_total",
			Help: "Speech synthesis requests by result.",
		}, []string{"result"}),
		VideoJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newscast_video_jobs_total",
			Help: "Video jobs by terminal state.",
		}, []string{"outcome"}),
		VideoPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newscast_video_polls_total",
			Help: "Status polls sent to the video provider.",
		}),
		MediaSavedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newscast_media_saved_bytes_total",
			Help: "Bytes written to the media library by kind.",
		}, []string{"kind"}),
		PipelineJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newscast_pipeline_jobs_total",
			Help: "Inbox jobs by final status.",
		}, []string{"status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newscast_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Extractions,
		m.Summaries,
		m.SpeechRequests,
		m.VideoJobs,
		m.VideoPolls,
		m.MediaSavedBytes,
		m.PipelineJobs,
		m.RequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

// ObserveVideo counts a finished video job and the polls it took.
func (m *Metrics) ObserveVideo(outcome string, polls int) {
	m.VideoJobs.WithLabelValues(outcome).Inc()
	m.VideoPolls.Add(float64(polls))
}
