// Package metrics defines the Prometheus instrumentation shared by the
// bot's event handlers and maintenance jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesHandled counts processed Telegram updates by kind
	// (command, text, callback).
	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prodbot_updates_handled_total",
		Help: "Number of Telegram updates processed, by kind.",
	}, []string{"kind"})

	// ProductsCreated counts products registered through the /new flow.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prodbot_products_created_total",
		Help: "Number of products registered.",
	})

	// ProductsWithdrawn counts products marked consumed or discarded.
	ProductsWithdrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prodbot_products_withdrawn_total",
		Help: "Number of products withdrawn.",
	})

	// InvitesIssued counts invite codes handed out.
	InvitesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prodbot_invites_issued_total",
		Help: "Number of invite codes issued.",
	})

	// InvitesRedeemed counts successful family switches.
	InvitesRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prodbot_invites_redeemed_total",
		Help: "Number of invites redeemed.",
	})

	// SweepNotifications counts expiry reminders actually delivered.
	SweepNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prodbot_sweep_notifications_total",
		Help: "Number of expiry reminder messages delivered.",
	})

	// ProductsPurged counts rows removed by the retention purge.
	ProductsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prodbot_products_purged_total",
		Help: "Number of withdrawn products garbage-collected.",
	})
)
