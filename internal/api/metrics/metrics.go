// Package metrics defines the custom Prometheus metrics of the account
// service. HTTP request metrics come from the echoprometheus middleware; the
// counters here track account outcomes that status codes alone do not show.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// Result label values.
const (
	ResultSuccess  = "success"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: success, invalid (missing fields), conflict (username/email taken), error
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: success, invalid (missing fields), rejected (bad credentials), error
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersDeletedTotal counts successfully deleted users.
var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of deleted users.",
	},
)
