package report

import (
	"testing"

	"golfcam/internal/model"
)

func TestSummarizeByState(t *testing.T) {
	cameras := []model.Camera{
		{ID: "C1", Location: model.Warehouse, Status: model.CameraAvailable},
		{ID: "C2", Location: "Jalisco", Status: model.CameraInUse},
		{ID: "C3", Location: "Jalisco", Status: model.CameraMaintenance},
		{ID: "C4", Location: "", Status: model.CameraAvailable},
	}
	workers := []model.Worker{
		{ID: "W1", State: "Jalisco", Status: model.WorkerAvailable},
		{ID: "W2", State: "Sonora", Status: model.WorkerActive},
	}
	tournaments := []model.Tournament{
		{ID: "T1", State: "Jalisco", Status: model.TournamentActive},
		{ID: "T2", State: "Jalisco", Status: model.TournamentFinished},
	}

	got := SummarizeByState(cameras, workers, tournaments, "")
	if len(got) != 3 {
		t.Fatalf("got %d states, want 3: %+v", len(got), got)
	}
	// Sorted: Almacén, Jalisco, Sonora.
	if got[0].State != model.Warehouse || got[0].Cameras != 2 {
		t.Fatalf("warehouse = %+v", got[0])
	}
	j := got[1]
	if j.State != "Jalisco" || j.Cameras != 2 || j.CamerasInUse != 1 || j.Workers != 1 ||
		j.WorkersAvailable != 1 || j.Tournaments != 2 || j.TournamentsActive != 1 {
		t.Fatalf("jalisco = %+v", j)
	}

	only := SummarizeByState(cameras, workers, tournaments, "sonora")
	if len(only) != 1 || only[0].State != "Sonora" || only[0].Workers != 1 {
		t.Fatalf("filtered = %+v", only)
	}
}
