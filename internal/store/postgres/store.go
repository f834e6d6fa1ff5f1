// Package postgres implements the Resource Store on PostgreSQL with gorm.
package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"golfcam/internal/model"
	"golfcam/internal/store"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// Store is a store.Store backed by one gorm handle, either the pool or a
// transaction.
type Store struct {
	db          *gorm.DB
	tournaments *repository[model.Tournament]
	workers     *repository[model.Worker]
	cameras     *repository[model.Camera]
	shipments   *repository[model.Shipment]
	history     *historyRepository
}

var _ store.Store = (*Store)(nil)

// Open connects to databaseURL and returns a Store.
func Open(databaseURL string, opts Options) (*Store, error) {
	if opts.SlowThreshold == 0 {
		opts.SlowThreshold = 500 * time.Millisecond
	}
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "[DB] ", log.LstdFlags), logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return New(db)
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) (*Store, error) {
	namer := db.NamingStrategy
	if namer == nil {
		namer = schema.NamingStrategy{}
	}
	s := &Store{db: db}

	var err error
	if s.tournaments, err = newRepository[model.Tournament](db, model.KindTournament, namer); err != nil {
		return nil, err
	}
	if s.workers, err = newRepository[model.Worker](db, model.KindWorker, namer); err != nil {
		return nil, err
	}
	if s.cameras, err = newRepository[model.Camera](db, model.KindCamera, namer); err != nil {
		return nil, err
	}
	if s.shipments, err = newRepository[model.Shipment](db, model.KindShipment, namer); err != nil {
		return nil, err
	}
	hf, err := parseFields(model.KindHistory, &model.CameraHistory{}, namer)
	if err != nil {
		return nil, err
	}
	s.history = &historyRepository{db: db, fields: hf}
	return s, nil
}

func newRepository[T store.Entity](db *gorm.DB, kind string, namer schema.Namer) (*repository[T], error) {
	fs, err := parseFields(kind, new(T), namer)
	if err != nil {
		return nil, err
	}
	return &repository[T]{db: db, fields: fs}, nil
}

// DB exposes the underlying handle for the services that keep their own
// tables (users, login attempts).
func (s *Store) DB() *gorm.DB { return s.db }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Tournaments() store.Repository[model.Tournament] { return s.tournaments }
func (s *Store) Workers() store.Repository[model.Worker]         { return s.workers }
func (s *Store) Cameras() store.Repository[model.Camera]         { return s.cameras }
func (s *Store) Shipments() store.Repository[model.Shipment]     { return s.shipments }
func (s *Store) History() store.HistoryRepository                { return s.history }

// Transaction runs fn inside a database transaction. Nested calls use
// savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.withDB(tx))
	})
}

func (s *Store) withDB(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		tournaments: s.tournaments.withDB(db),
		workers:     s.workers.withDB(db),
		cameras:     s.cameras.withDB(db),
		shipments:   s.shipments.withDB(db),
		history:     s.history.withDB(db),
	}
}
