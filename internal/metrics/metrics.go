package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"BasketMint/internal/model"
)

// Collector turns engine events into Prometheus series. It implements
// events.Sink.
type Collector struct {
	events       *prometheus.CounterVec
	sharesMinted *prometheus.CounterVec
	aggregate    *prometheus.GaugeVec
	minimum      prometheus.Gauge
	activeFunds  prometheus.Gauge
}

// NewCollector creates the series and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "basketmint_events_total",
			Help: "Engine events by kind.",
		}, []string{"kind"}),
		sharesMinted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "basketmint_shares_minted_total",
			Help: "Shares credited to contributors per fund.",
		}, []string{"fund"}),
		aggregate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "basketmint_fund_aggregate_value",
			Help: "Aggregate deposited value per fund after the last operation.",
		}, []string{"fund"}),
		minimum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "basketmint_dynamic_minimum",
			Help: "Most recently applied issuance minimum.",
		}),
		activeFunds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "basketmint_active_funds",
			Help: "Funds created and not yet deactivated.",
		}),
	}
	reg.MustRegister(c.events, c.sharesMinted, c.aggregate, c.minimum, c.activeFunds)
	return c
}

// Seed sets the gauges from funds that already exist, such as those restored
// from the state directory, which never emit a creation event.
func (c *Collector) Seed(funds []model.Fund) {
	if c == nil {
		return
	}
	active := 0
	for _, f := range funds {
		if f.Active {
			active++
		}
		c.aggregate.WithLabelValues(f.ID).Set(f.AggregateValue.InexactFloat64())
	}
	c.activeFunds.Set(float64(active))
}

// Publish records one event.
func (c *Collector) Publish(evt model.Event) {
	if c == nil {
		return
	}
	kind := string(evt.Kind)
	if kind == "" {
		kind = "unknown"
	}
	c.events.WithLabelValues(kind).Inc()

	switch evt.Kind {
	case model.EventFundCreated:
		c.activeFunds.Inc()
		c.setMinimum(evt)
	case model.EventDepositRecorded:
		c.aggregate.WithLabelValues(evt.FundID).Set(evt.Value.InexactFloat64())
	case model.EventMinimumRecalculated:
		c.setMinimum(evt)
	case model.EventSharesIssued:
		c.sharesMinted.WithLabelValues(evt.FundID).Add(evt.Shares.InexactFloat64())
		c.aggregate.WithLabelValues(evt.FundID).Set(evt.Value.InexactFloat64())
		c.setMinimum(evt)
	case model.EventFundDeactivated:
		c.activeFunds.Dec()
	}
}

func (c *Collector) setMinimum(evt model.Event) {
	if !evt.Minimum.IsZero() {
		c.minimum.Set(evt.Minimum.InexactFloat64())
	}
}
