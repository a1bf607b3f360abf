package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shenikar/flood_dispatch_system/internal/models"
)

const namespace = "flood_dispatch"

// Metrics - счетчики Prometheus для операций леджера и приемников событий
type Metrics struct {
	LedgerOperations *prometheus.CounterVec // labels: operation={create,update_status,delete}, outcome={applied,not_found,rejected}
	Dispatches       *prometheus.CounterVec // labels: vehicle={heavy_pump,suction_tanker,generic_team}

	EventsPublished   *prometheus.CounterVec // labels: sink, outcome={success,error}
	WebhookDeliveries *prometheus.CounterVec // labels: outcome={delivered,failed,skipped,malformed,requeued}
}

func newMetrics() *Metrics {
	return &Metrics{
		LedgerOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Ledger mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Dispatches created by vehicle kind.",
		}, []string{"vehicle"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Ledger events handed to the configured sink.",
		}, []string{"sink", "outcome"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook delivery attempts by final outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics создает метрики и регистрирует их в реестре Prometheus по умолчанию
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LedgerOperations,
		m.Dispatches,
		m.EventsPublished,
		m.WebhookDeliveries,
	)
	return m
}

// NewMetricsForTesting создает незарегистрированные метрики,
// чтобы тесты не падали с "already registered"
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// LedgerCollector отдает состояние пулов и число инцидентов в момент scrape.
// Снимок берется под мьютексом леджера, поэтому значения всегда согласованы.
type LedgerCollector struct {
	source    func() models.Snapshot
	available *prometheus.Desc
	total     *prometheus.Desc
	incidents *prometheus.Desc
}

// NewLedgerCollector создает коллектор поверх источника снимков (обычно Ledger.Snapshot)
func NewLedgerCollector(source func() models.Snapshot) *LedgerCollector {
	return &LedgerCollector{
		source: source,
		available: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "resource_available"),
			"Units currently available per resource pool.",
			[]string{"pool"}, nil,
		),
		total: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "resource_total"),
			"Fixed capacity per resource pool.",
			[]string{"pool"}, nil,
		),
		incidents: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "incidents_tracked"),
			"Incidents currently held by the ledger.",
			nil, nil,
		),
	}
}

func (c *LedgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.available
	ch <- c.total
	ch <- c.incidents
}

func (c *LedgerCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source()
	for name, pool := range snap.Resources.Pools() {
		ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, float64(pool.Available), name)
		ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(pool.Total), name)
	}
	ch <- prometheus.MustNewConstMetric(c.incidents, prometheus.GaugeValue, float64(len(snap.Incidents)))
}
