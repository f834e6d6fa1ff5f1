package report

import (
	"sort"
	"strings"

	"golfcam/internal/model"
)

// StateSummary is one marker on the dashboard map.
type StateSummary struct {
	State             string `json:"state"`
	Cameras           int    `json:"cameras"`
	CamerasInUse      int    `json:"camerasInUse"`
	Workers           int    `json:"workers"`
	WorkersAvailable  int    `json:"workersAvailable"`
	Tournaments       int    `json:"tournaments"`
	TournamentsActive int    `json:"tournamentsActive"`
}

// SummarizeByState counts cameras, workers and tournaments per state.
// Cameras in the warehouse are counted under model.Warehouse. A non-empty
// state keeps only that state, compared case-insensitively.
func SummarizeByState(cameras []model.Camera, workers []model.Worker, tournaments []model.Tournament, state string) []StateSummary {
	byState := make(map[string]*StateSummary)
	get := func(name string) *StateSummary {
		name = strings.TrimSpace(name)
		if name == "" {
			name = UnknownCategory
		}
		s, ok := byState[name]
		if !ok {
			s = &StateSummary{State: name}
			byState[name] = s
		}
		return s
	}

	for _, c := range cameras {
		name := c.Location
		if c.InWarehouse() {
			name = model.Warehouse
		}
		s := get(name)
		s.Cameras++
		if c.Status == model.CameraInUse {
			s.CamerasInUse++
		}
	}
	for _, w := range workers {
		s := get(w.State)
		s.Workers++
		if w.Status == model.WorkerAvailable {
			s.WorkersAvailable++
		}
	}
	for _, t := range tournaments {
		s := get(t.State)
		s.Tournaments++
		if t.Status == model.TournamentActive {
			s.TournamentsActive++
		}
	}

	out := make([]StateSummary, 0, len(byState))
	for name, s := range byState {
		if state != "" && !strings.EqualFold(name, strings.TrimSpace(state)) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}
