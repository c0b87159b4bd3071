package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"atlaswifi/internal/payload"
)

const namespace = "atlaswifi"

// Collector counts payload pipeline outcomes
type Collector struct {
	accessPoints *prometheus.CounterVec
	payloads     *prometheus.CounterVec
	buildErrors  *prometheus.CounterVec
}

// NewCollector creates the pipeline counters and registers them with reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		accessPoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_points_total",
				Help:      "Access points decided by the filter engine, by outcome.",
			},
			[]string{"status"},
		),
		payloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payloads_total",
				Help:      "Uplink payloads built, by number of encoded MAC addresses.",
			},
			[]string{"mac_count"},
		),
		buildErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "build_errors_total",
				Help:      "Failed payload builds, by error kind.",
			},
			[]string{"kind"},
		),
	}

	for _, col := range []prometheus.Collector{c.accessPoints, c.payloads, c.buildErrors} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// AccessPointsFiltered implements payload.Observer
func (c *Collector) AccessPointsFiltered(valid, filteredOut int) {
	c.accessPoints.WithLabelValues("valid").Add(float64(valid))
	c.accessPoints.WithLabelValues("filtered_out").Add(float64(filteredOut))
}

// PayloadBuilt implements payload.Observer
func (c *Collector) PayloadBuilt(p payload.Payload) {
	c.payloads.WithLabelValues(strconv.Itoa(p.Count)).Inc()
}

// BuildFailed implements payload.Observer
func (c *Collector) BuildFailed(err error) {
	c.buildErrors.WithLabelValues(payload.Kind(err)).Inc()
}

var _ payload.Observer = (*Collector)(nil)
