// Package metrics expone los contadores Prometheus de la generación de facturas electrónicas.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appbilling "github.com/jhoicas/Reifenservice-api/internal/application/billing"
)

const metricPrefix = "einvoice_"

var _ appbilling.AssemblyMetrics = (*EInvoice)(nil)

// EInvoice contadores del pipeline de ensamblado.
type EInvoice struct {
	assemblies    *prometheus.CounterVec
	renderLatency prometheus.Histogram
}

// NewEInvoice crea y registra los colectores en reg.
func NewEInvoice(reg prometheus.Registerer) *EInvoice {
	m := &EInvoice{
		assemblies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "assembly_total",
				Help: "Total invoice assemblies by result (hybrid, plain, rejected, invalid, retryable, failed)",
			},
			[]string{"result"},
		),
		renderLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "render_seconds",
				Help:    "Render service latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}
	reg.MustRegister(m.assemblies, m.renderLatency)
	return m
}

var (
	registerOnce sync.Once
	defaultSet   *EInvoice
)

// Default colectores registrados una sola vez en el registro global (expuesto en /metrics).
func Default() *EInvoice {
	registerOnce.Do(func() {
		defaultSet = NewEInvoice(prometheus.DefaultRegisterer)
	})
	return defaultSet
}

// IncAssembly cuenta un ensamblado terminado.
func (m *EInvoice) IncAssembly(result string) {
	m.assemblies.WithLabelValues(result).Inc()
}

// ObserveRender registra la duración de una llamada al renderer.
func (m *EInvoice) ObserveRender(d time.Duration) {
	m.renderLatency.Observe(d.Seconds())
}
