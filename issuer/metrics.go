package issuer

import (
	"github.com/pardot/jwtissuer/claims"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	failurePayload    = "payload"
	failureCredential = "credential"
	failureSigning    = "signing"
)

type metrics struct {
	issuedCounter  *prometheus.CounterVec
	failureCounter *prometheus.CounterVec
}

// newMetrics registers the issuer's counters. A nil registry disables
// metrics, and returns a nil *metrics which is safe to call.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		issuedCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtissuer_tokens_issued_total",
			Help: "Count of all signed tokens issued.",
		}, []string{"kind"}),
		failureCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtissuer_token_issue_failures_total",
			Help: "Count of token issue attempts that failed, by the stage that failed.",
		}, []string{"kind", "reason"}),
	}

	for _, c := range []prometheus.Collector{m.issuedCounter, m.failureCounter} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) issued(k claims.Kind) {
	if m == nil {
		return
	}
	m.issuedCounter.With(prometheus.Labels{"kind": k.String()}).Inc()
}

func (m *metrics) failed(k claims.Kind, reason string) {
	if m == nil {
		return
	}
	m.failureCounter.With(prometheus.Labels{"kind": k.String(), "reason": reason}).Inc()
}
