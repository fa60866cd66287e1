package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/mohammadazar1/acad/internal"
	"github.com/mohammadazar1/acad/internal/database"
	"github.com/mohammadazar1/acad/internal/logging"
	"github.com/mohammadazar1/acad/internal/store"
	"go.uber.org/zap"
)

// app is the state a command runs with: config, logger and the resolved
// global flags.
type app struct {
	cfg      *internal.Config
	log      *zap.Logger
	out      io.Writer
	output   string
	currency string
	asOf     time.Time
	academy  string
	dbPath   string
}

func newApp(g globalFlags) (*app, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	output := g.Output
	if output == "" {
		output = "table"
	}
	if output != "table" && output != "json" {
		return nil, fmt.Errorf("invalid output format %q (want table or json)", output)
	}

	asOf := today()
	if g.AsOf != "" {
		if asOf, err = internal.ParseDate(g.AsOf); err != nil {
			return nil, fmt.Errorf("--as-of: %w", err)
		}
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		out:      os.Stdout,
		output:   output,
		currency: g.Currency,
		asOf:     asOf,
		academy:  firstNonEmpty(g.Academy, cfg.Academy),
		dbPath:   firstNonEmpty(g.Database, cfg.Database, internal.DefaultDatabasePath()),
	}
	log.Debug("app ready",
		zap.String("as_of", asOf.Format(internal.DateLayout)),
		zap.String("database", a.dbPath),
		zap.String("academy", a.academy))
	return a, nil
}

// loadConfig reads the config file. A missing default file means defaults;
// a missing explicit file is an error.
func loadConfig(path string) (*internal.Config, error) {
	explicit := path != ""
	if !explicit {
		path = internal.DefaultConfigPath()
	}
	if path == "" {
		return &internal.Config{}, nil
	}

	cfg, err := internal.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return &internal.Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (a *app) json() bool {
	return a.output == "json"
}

// currencyFor resolves the display currency: flag, then the academy's own,
// then config, then the system locale.
func (a *app) currencyFor(academy internal.Academy) internal.Currency {
	return internal.ResolveCurrency(a.currency, academy.Currency, a.cfg.Currency)
}

// load reads an academy from a data source, or from the database when source
// is empty, and applies the config's exclude rules.
func (a *app) load(source string) (*internal.AcademyData, error) {
	format, path := internal.ParseFileArg(source)
	if format == "" && source != "" {
		format, _ = internal.DetectFormat(path)
	}

	var data *internal.AcademyData
	var err error
	switch {
	case source == "":
		data, err = loadDatabase(a.dbPath, a.academy)
	case format == sqliteSource:
		data, err = loadDatabase(path, a.academy)
	default:
		data, err = internal.LoadSource(source)
	}
	if err != nil {
		return nil, err
	}

	if data.Academy.Name == "" {
		data.Academy.Name = a.cfg.Academy
	}
	var excluded int
	data.Players, excluded = a.cfg.FilterExcluded(data.Players)

	a.log.Info("source loaded",
		zap.String("source", firstNonEmpty(source, a.dbPath)),
		zap.String("academy", data.Academy.Name),
		zap.Int("players", len(data.Players)),
		zap.Int("excluded", excluded))
	return data, nil
}

// openStore opens the configured database.
func (a *app) openStore() (*store.Store, *sql.DB, error) {
	db, err := database.Open(a.dbPath)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), db, nil
}

// withAcademy runs fn against the database academy selected by --academy.
func (a *app) withAcademy(fn func(s *store.Store, academy *internal.Academy) error) error {
	s, db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	academy, err := resolveAcademy(s, a.academy)
	if err != nil {
		return err
	}
	return fn(s, academy)
}

// resolveAcademy picks the named academy, or the only one stored.
func resolveAcademy(s *store.Store, idOrName string) (*internal.Academy, error) {
	if idOrName != "" {
		return s.Academies.Resolve(idOrName)
	}
	academies, err := s.Academies.List()
	if err != nil {
		return nil, err
	}
	switch len(academies) {
	case 0:
		return nil, fmt.Errorf("no academy stored, run import first: %w", internal.ErrNotFound)
	case 1:
		return &academies[0], nil
	default:
		return nil, fmt.Errorf("%d academies stored, choose one with --academy", len(academies))
	}
}
