package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// attendanceUpdates counts attendance updates by direction and outcome
// (ok, busy, not_found, error).
var attendanceUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "calendar",
	Name:      "attendance_updates_total",
	Help:      "Attendance updates by direction and outcome.",
}, []string{"direction", "outcome"})
