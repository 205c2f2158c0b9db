// Package metrics defines and registers all custom Prometheus metrics for
// the CrewLink API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crewlink"

// InvitesIssuedTotal counts capability tokens handed to the notifier.
var InvitesIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_issued_total",
		Help:      "Total number of coworker invite tokens issued.",
	},
)

// InvitesRedeemedTotal counts invite redemption attempts.
// Label:
//   - result: "accepted", "invalid", or "consumed"
var InvitesRedeemedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_redeemed_total",
		Help:      "Total number of invite redemption attempts, by result.",
	},
	[]string{"result"},
)

// MembershipClassifiedTotal counts reconciler verdicts per classification.
// Label:
//   - classification: "invited", "verified", or "verifiable"
var MembershipClassifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_classified_total",
		Help:      "Total membership entries produced by reconciliation, by classification.",
	},
	[]string{"classification"},
)

// ConnectionsTotal counts connection graph writes by resulting status.
var ConnectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_total",
		Help:      "Total connection edges written, by resulting status.",
	},
	[]string{"status"},
)

// VerificationsTotal counts explicit coworker verifications.
var VerificationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total explicit coworker verifications applied.",
	},
)
