// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "editor",
			Name:      "mutations_total",
			Help:      "Mutations applied to drafts, by op and result.",
		},
		[]string{"op", "result"},
	)

	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "editor",
			Name:      "saves_total",
			Help:      "Draft saves, by result.",
		},
		[]string{"result"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Media uploads, by result.",
		},
		[]string{"result"},
	)

	liveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "folio",
			Subsystem: "live",
			Name:      "connections",
			Help:      "Open live channel connections.",
		},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveMutation counts one applied or rejected mutation.
func ObserveMutation(op string, err error) {
	mutationsTotal.WithLabelValues(op, result(err)).Inc()
}

// ObserveSave counts one save attempt.
func ObserveSave(err error) {
	savesTotal.WithLabelValues(result(err)).Inc()
}

// ObserveUpload counts one upload; rejected uploads are counted separately
// from failures.
func ObserveUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

// LiveConnected tracks an opened live connection; call the returned
// function when it closes.
func LiveConnected() func() {
	liveConnections.Inc()
	return liveConnections.Dec
}
