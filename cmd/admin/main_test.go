package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golfcam/internal/config"
	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/service"
	"golfcam/internal/store/storetest"
)

func newTestAdmin(t *testing.T) (*admin, *storetest.Store, *events.Memory) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		ResetAtomic:    true,
		ReportTimezone: "UTC",
	}
	st := storetest.New()
	pub, err := newPublisher(cfg, st, nil)
	if err != nil {
		t.Fatalf("newPublisher: %v", err)
	}
	mem := &events.Memory{}
	pub = append(pub, mem)
	return &admin{cfg: cfg, store: st, users: storetest.NewUsers(), events: pub}, st, mem
}

func actions(mem *events.Memory) []string {
	var out []string
	for _, e := range mem.Events() {
		out = append(out, e.Kind+"."+e.Action)
	}
	return out
}

func TestPublisherInvalidatesReports(t *testing.T) {
	pub, err := newPublisher(&config.Config{ReportTimezone: "UTC"}, storetest.New(), nil)
	if err != nil {
		t.Fatalf("newPublisher: %v", err)
	}
	if len(pub) == 0 {
		t.Fatal("empty publisher")
	}
	if _, ok := pub[0].(*service.ReportService); !ok {
		t.Fatalf("first publisher is %T, want *service.ReportService", pub[0])
	}
	if _, err := newPublisher(&config.Config{ReportTimezone: "Mars/Olympus"}, storetest.New(), nil); err == nil {
		t.Fatal("bad timezone accepted")
	}
}

func TestResetPublishes(t *testing.T) {
	a, _, mem := newTestAdmin(t)
	var out bytes.Buffer
	if err := a.exec(context.Background(), "reset", nil, &out); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got := actions(mem)
	if len(got) != 1 || got[0] != events.KindFleet+"."+events.ActionReset {
		t.Fatalf("events = %v", got)
	}
}

func TestRebuildViewsPublishes(t *testing.T) {
	ctx := context.Background()
	a, st, mem := newTestAdmin(t)
	if err := st.Workers().Create(ctx, &model.Worker{ID: "W1", Name: "Ana"}); err != nil {
		t.Fatalf("create worker: %v", err)
	}
	w := "W1"
	if err := st.Cameras().Create(ctx, &model.Camera{ID: "C1", AssignedTo: &w, Status: model.CameraAvailable, Location: model.Warehouse}); err != nil {
		t.Fatalf("create camera: %v", err)
	}

	var out bytes.Buffer
	if err := a.exec(ctx, "verify", nil, &out); err == nil {
		t.Fatal("verify passed with drift")
	}
	out.Reset()
	if err := a.exec(ctx, "rebuild-views", nil, &out); err != nil {
		t.Fatalf("rebuild-views: %v", err)
	}
	if !strings.Contains(out.String(), "W1") {
		t.Fatalf("report = %s", out.String())
	}
	got := actions(mem)
	if len(got) != 1 || got[0] != model.KindWorker+"."+events.ActionRebuilt {
		t.Fatalf("events = %v", got)
	}
	if err := a.exec(ctx, "verify", nil, &out); err != nil {
		t.Fatalf("verify after rebuild: %v", err)
	}
}

func TestImportPublishes(t *testing.T) {
	a, st, mem := newTestAdmin(t)
	path := filepath.Join(t.TempDir(), "cameras.json")
	if err := os.WriteFile(path, []byte(`[{"id":"C1","model":"X2"},{"id":"C2"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	if err := a.exec(context.Background(), "import", []string{"-kind", "cameras", "-file", path}, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if n, err := st.Cameras().List(context.Background(), nil); err != nil || len(n) != 2 {
		t.Fatalf("cameras = %d, %v", len(n), err)
	}
	var imported bool
	for _, e := range mem.Events() {
		if e.Action == events.ActionImported && e.Kind == model.KindCamera {
			imported = true
		}
	}
	if !imported {
		t.Fatalf("events = %v", actions(mem))
	}

	if err := a.exec(context.Background(), "import", []string{"-kind", "planes", "-file", path}, &out); err == nil {
		t.Fatal("unknown collection accepted")
	}
}

func TestUnknownCommand(t *testing.T) {
	a, _, _ := newTestAdmin(t)
	if err := a.exec(context.Background(), "explode", nil, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("err = %v", err)
	}
}
