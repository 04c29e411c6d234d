package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exposes the service's operational metrics. It
// satisfies both the broadcast hub's and the feed service's metrics
// interfaces.
type PrometheusCollector struct {
	liveViewers          prometheus.Gauge
	postsCreatedTotal    prometheus.Counter
	moderationRejections prometheus.Counter
	eventsPublishedTotal prometheus.Counter
	deliveriesTotal      prometheus.Counter
	droppedViewersTotal  prometheus.Counter

	postPipelineDuration prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		liveViewers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "murmurnet_live_viewers",
			Help: "Number of currently connected live feed viewers",
		}),

		postsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "murmurnet_posts_created_total",
			Help: "Total number of posts accepted and persisted",
		}),

		moderationRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "murmurnet_moderation_rejections_total",
			Help: "Total number of posts rejected by content moderation",
		}),

		eventsPublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "murmurnet_feed_events_published_total",
			Help: "Total number of feed events published to the live hub",
		}),

		deliveriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "murmurnet_feed_event_deliveries_total",
			Help: "Total number of per-viewer feed event deliveries",
		}),

		droppedViewersTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "murmurnet_dropped_viewers_total",
			Help: "Total number of viewers dropped for not keeping up",
		}),

		postPipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "murmurnet_post_pipeline_duration_seconds",
			Help:    "Time from post submission to publish, including moderation",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
}

func (p *PrometheusCollector) RecordViewerConnected() {
	p.liveViewers.Inc()
}

func (p *PrometheusCollector) RecordViewerDisconnected() {
	p.liveViewers.Dec()
}

func (p *PrometheusCollector) RecordEventPublished(delivered, dropped int) {
	p.eventsPublishedTotal.Inc()
	p.deliveriesTotal.Add(float64(delivered))
	if dropped > 0 {
		p.droppedViewersTotal.Add(float64(dropped))
	}
}

func (p *PrometheusCollector) RecordPostCreated() {
	p.postsCreatedTotal.Inc()
}

func (p *PrometheusCollector) RecordModerationRejected() {
	p.moderationRejections.Inc()
}

func (p *PrometheusCollector) RecordPipelineDuration(d time.Duration) {
	p.postPipelineDuration.Observe(d.Seconds())
}
