package report

import (
	"golfcam/internal/model"
)

// Tournaments returns options for the tournament trend chart, split by
// status when split is set.
func Tournaments(split bool, filters ...Predicate[model.Tournament]) Options[model.Tournament] {
	return Options[model.Tournament]{
		Date:     func(t model.Tournament) string { return t.Date },
		Category: func(t model.Tournament) string { return t.Status },
		Split:    split,
		Filters:  filters,
	}
}

// Shipments returns options for the shipment trend chart.
func Shipments(split bool, filters ...Predicate[model.Shipment]) Options[model.Shipment] {
	return Options[model.Shipment]{
		Date:     func(s model.Shipment) string { return s.Date },
		Category: func(s model.Shipment) string { return s.Status },
		Split:    split,
		Filters:  filters,
	}
}

// DaysEquals keeps tournaments lasting n days.
func DaysEquals(n int) Predicate[model.Tournament] {
	return func(t model.Tournament) bool { return t.Days == n }
}

// HolesContain keeps tournaments covering hole h.
func HolesContain(h int) Predicate[model.Tournament] {
	return func(t model.Tournament) bool { return t.HasHole(h) }
}

// StatusIs keeps shipments with the given status.
func StatusIs(status string) Predicate[model.Shipment] {
	return func(s model.Shipment) bool { return s.Status == status }
}
