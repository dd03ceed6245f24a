// Package metrics содержит коллекторы Prometheus сервиса учёта устройств.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Исходы учёта поиска.
const (
	OutcomeAllowed   = "allowed"
	OutcomeDenied    = "denied"
	OutcomeUntracked = "untracked"
	OutcomeDegraded  = "degraded"
)

// Metrics - набор коллекторов сервиса.
type Metrics struct {
	Searches    *prometheus.CounterVec
	Syncs       *prometheus.CounterVec
	CacheLookup *prometheus.CounterVec
	Events      *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phytocheck",
			Subsystem: "device",
			Name:      "searches_total",
			Help:      "Search increments by outcome.",
		}, []string{"outcome"}),
		Syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phytocheck",
			Subsystem: "device",
			Name:      "syncs_total",
			Help:      "Device syncs by mode.",
		}, []string{"mode"}),
		CacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phytocheck",
			Subsystem: "device",
			Name:      "cache_lookups_total",
			Help:      "Device cache lookups by result.",
		}, []string{"result"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phytocheck",
			Subsystem: "device",
			Name:      "events_total",
			Help:      "Published device events by type and status.",
		}, []string{"type", "status"}),
	}
	reg.MustRegister(m.Searches, m.Syncs, m.CacheLookup, m.Events)
	return m
}

// Search учитывает исход поиска. Безопасен для nil.
func (m *Metrics) Search(outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
}

// Sync учитывает синхронизацию: online или offline.
func (m *Metrics) Sync(offline bool) {
	if m == nil {
		return
	}
	mode := "online"
	if offline {
		mode = "offline"
	}
	m.Syncs.WithLabelValues(mode).Inc()
}

// Cache учитывает попадание или промах кеша.
func (m *Metrics) Cache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookup.WithLabelValues(result).Inc()
}

// Event учитывает публикацию события.
func (m *Metrics) Event(eventType string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.Events.WithLabelValues(eventType, status).Inc()
}
