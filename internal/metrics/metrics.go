package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeDuplicate  = "duplicate"
	OutcomeIneligible = "ineligible"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
)

// Metrics holds the Prometheus collectors for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	VoterRegistrations *prometheus.CounterVec
	AdminLogins        *prometheus.CounterVec
	AuthRejections     prometheus.Counter
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		VoterRegistrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterreg_voter_registrations_total",
			Help: "Voter registration attempts by outcome",
		}, []string{"outcome"}),
		AdminLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterreg_admin_logins_total",
			Help: "Administrator login attempts by outcome",
		}, []string{"outcome"}),
		AuthRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "voterreg_auth_rejections_total",
			Help: "Requests to protected routes rejected for a missing or bad token",
		}),
	}
}

func (m *Metrics) RegistrationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.VoterRegistrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LoginOutcome(outcome string) {
	if m == nil {
		return
	}
	m.AdminLogins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AuthRejected() {
	if m == nil {
		return
	}
	m.AuthRejections.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
