// Package main provides the golfcam administration CLI.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"golfcam/internal/config"
	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/service"
	"golfcam/internal/store"
	"golfcam/internal/store/postgres"
)

const usage = `usage: golfcam-admin <command> [flags]

commands:
  migrate up|down|version   apply, roll back (-steps N) or show schema migrations
  reset                     return every camera to the warehouse
  import -kind K -file F    bulk import a .json or .xlsx file (K: tournaments, workers, cameras, shipments)
  template -kind K -out F   write the .xlsx import template for K
  rebuild-views             recompute each worker's assigned cameras
  verify                    report assignment drift without changing anything
  create-user -username U -password P [-role admin|user]
  events -since DURATION    print events stored in JetStream (e.g. -since 24h)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Admin] Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Printf("[Admin] %s failed: %v", os.Args[1], err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "migrate":
		return runMigrate(cfg, args, out)
	case "events":
		return runEvents(ctx, cfg, args, out)
	case "template":
		return runTemplate(args)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}

	st, err := postgres.Open(cfg.DatabaseURL, postgres.Options{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return err
	}
	defer st.Close()

	rdb := connectRedis(ctx, cfg.RedisURL)
	if rdb != nil {
		defer rdb.Close()
	}
	pub, err := newPublisher(cfg, st, rdb)
	if err != nil {
		return err
	}
	if nc := connectNATS(cfg.NATSURL); nc != nil {
		defer nc.Close()
		if np, err := events.NewNATSPublisher(nc, cfg.JetStreamEnabled); err == nil {
			pub = append(pub, np)
		} else {
			log.Printf("[Admin] JetStream unavailable, events not persisted: %v", err)
		}
	}

	a := &admin{cfg: cfg, store: st, users: st.Users(), events: pub}
	return a.exec(ctx, cmd, args, out)
}

// admin runs the commands that need the store. Every change goes through
// events so cached reports are invalidated the same way the API does it.
type admin struct {
	cfg    *config.Config
	store  store.Store
	users  service.UserStore
	events events.Publisher
}

// newPublisher returns a fanout whose first member invalidates cached
// reports. rdb may be nil.
func newPublisher(cfg *config.Config, st store.Store, rdb *redis.Client) (events.Fanout, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return events.Fanout{service.NewReportService(st, rdb, cfg.ReportCacheTTL, loc)}, nil
}

func (a *admin) exec(ctx context.Context, cmd string, args []string, out io.Writer) error {
	assignments := service.NewAssignmentService(a.store, a.events)

	switch cmd {
	case "reset":
		report, err := service.NewMaintenanceService(a.store, a.cfg.ResetAtomic, a.events).Reset(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, report)

	case "rebuild-views":
		report, err := assignments.RebuildViews(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, report)

	case "verify":
		report, err := assignments.Verify(ctx)
		if err != nil {
			return err
		}
		if err := writeJSON(out, report); err != nil {
			return err
		}
		if !report.OK {
			return errors.New("assignment drift detected, run rebuild-views")
		}
		return nil

	case "import":
		fs := flag.NewFlagSet("import", flag.ContinueOnError)
		collection := fs.String("kind", "", "collection to import into")
		file := fs.String("file", "", "path to a .json or .xlsx file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		kind, ok := model.Collections[*collection]
		if !ok {
			return fmt.Errorf("unknown collection %q", *collection)
		}
		result, err := importFile(ctx, service.NewImportService(a.store, assignments, a.events), kind, *file)
		if err != nil {
			return err
		}
		return writeJSON(out, result)

	case "create-user":
		fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
		username := fs.String("username", "", "login name")
		password := fs.String("password", "", "initial password")
		role := fs.String("role", service.RoleUser, "admin or user")
		if err := fs.Parse(args); err != nil {
			return err
		}
		auth := service.NewAuthService(a.users, a.cfg.JWTSecret, a.cfg.JWTTTL)
		user, err := auth.CreateUser(ctx, *username, *password, *role)
		if err != nil {
			return err
		}
		return writeJSON(out, user)
	}

	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

// connectRedis returns nil when Redis is not configured or unreachable.
// Cached reports then expire by TTL only.
func connectRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("[Admin] Redis unavailable, cached reports will expire by TTL: %v", err)
		client.Close()
		return nil
	}
	return client
}

// connectNATS returns nil when NATS is not configured or unreachable.
func connectNATS(url string) *nats.Conn {
	if url == "" {
		return nil
	}
	nc, err := nats.Connect(url, nats.Name("golfcam-admin"))
	if err != nil {
		log.Printf("[Admin] NATS unavailable, events stay local: %v", err)
		return nil
	}
	return nc
}

func runMigrate(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "migrations to roll back with down")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch fs.Arg(0) {
	case "", "up":
		return postgres.MigrateUp(cfg.DatabaseURL)
	case "down":
		return postgres.MigrateDown(cfg.DatabaseURL, *steps)
	case "version":
		version, dirty, err := postgres.MigrateVersion(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version %d dirty=%v\n", version, dirty)
		return nil
	}
	return fmt.Errorf("unknown migrate action %q", fs.Arg(0))
}

func runTemplate(args []string) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	collection := fs.String("kind", "", "collection the template is for")
	path := fs.String("out", "", "output .xlsx path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	kind, ok := model.Collections[*collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", *collection)
	}
	if *path == "" {
		*path = *collection + "_template.xlsx"
	}
	buf, err := service.NewImportService(nil, nil, events.Nop{}).Template(kind)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	log.Printf("[Admin] wrote %s", *path)
	return nil
}

func importFile(ctx context.Context, svc *service.ImportService, kind, path string) (*model.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []model.ImportRow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = svc.ParseExcel(kind, f)
	case ".json":
		rows, err = svc.ParseJSON(kind, f)
	default:
		return nil, fmt.Errorf("unsupported file type %q, want .json or .xlsx", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return svc.Import(ctx, kind, rows)
}

func runEvents(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	since := fs.Duration("since", time.Hour, "how far back to read")
	kind := fs.String("kind", "", "only events of this kind")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("golfcam-admin"))
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Close()

	publisher, err := events.NewNATSPublisher(nc, true)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	var encodeErr error
	err = publisher.Replay(ctx, time.Now().Add(-*since), func(e events.Event) {
		if *kind != "" && e.Kind != *kind {
			return
		}
		if encodeErr == nil {
			encodeErr = enc.Encode(e)
		}
	})
	if err != nil {
		return err
	}
	return encodeErr
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
