package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/astrometer/internal/api"
	"github.com/lox/astrometer/internal/calibration"
	"github.com/lox/astrometer/internal/chart"
	"github.com/lox/astrometer/internal/ephemeris"
	"github.com/lox/astrometer/internal/meters"
	"github.com/lox/astrometer/internal/store"
)

type cli struct {
	DB       string `help:"Path to the sqlite calibration database." default:"data/astrometer.db" env:"ASTROMETER_DB"`
	Registry string `help:"Meter registry version." default:"v2" env:"ASTROMETER_REGISTRY"`

	Serve     serveCmd     `cmd:"" help:"Run the meter API server."`
	Calibrate calibrateCmd `cmd:"" help:"Generate calibration tables from synthetic charts."`
	Read      readCmd      `cmd:"" help:"Compute one day's meters for chart files and print them."`
}

type appContext struct {
	db       *sql.DB
	store    *store.Store
	registry *meters.Registry
	labels   *meters.Labels
}

type serveCmd struct {
	Port         string `help:"HTTP server port." default:"8080" env:"ASTROMETER_PORT"`
	ChartService string `help:"Base URL of the chart-computation service." env:"ASTROMETER_CHART_SERVICE"`
	Calibration  string `help:"Calibration version to load (default: latest)." env:"ASTROMETER_CALIBRATION"`
}

func (c *serveCmd) Run(app *appContext) error {
	set, err := loadCalibration(app, c.Calibration)
	if err != nil {
		return err
	}
	engine := meters.NewEngine(app.registry, app.labels, set)

	var charts *ephemeris.Client
	if c.ChartService != "" {
		charts = ephemeris.NewClient(c.ChartService)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(engine, charts, set, c.Port)
	log.Printf("starting server on :%s (registry %s, calibration %q, %d calibrated meters)",
		c.Port, app.registry.Version, set.Version, set.Meters())
	return server.Run(ctx)
}

type calibrateCmd struct {
	Version   string `help:"Version label for the generated tables." required:""`
	Samples   int    `help:"Synthetic (chart, date) samples to draw." default:"20000"`
	Workers   int    `help:"Worker pool size." default:"8"`
	SpanYears int    `help:"Decades of dates to spread samples across." default:"60"`
}

func (c *calibrateCmd) Run(app *appContext) error {
	engine := meters.NewEngine(app.registry, app.labels, nil)
	endYear := time.Now().Year()

	sample := func(i int) (map[string]calibration.RawSample, error) {
		seed := int64(i)
		natal := ephemeris.SyntheticNatal(seed, endYear, c.SpanYears)
		transit := ephemeris.TransitAt(ephemeris.SyntheticTransitDate(seed, endYear, c.SpanYears))
		return engine.RawScores(natal, transit)
	}

	log.Printf("generating calibration %s: %d samples over %d workers", c.Version, c.Samples, c.Workers)
	tables, stats, err := calibration.Generate(calibration.GenerateOptions{
		Version: c.Version,
		Samples: c.Samples,
		Workers: c.Workers,
	}, sample)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if err := app.store.SaveCalibration(tables, stats, app.registry.Version); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	log.Printf("calibration %s: %d tables for %d meters in %s",
		c.Version, len(tables), stats.Meters, stats.FinishedAt.Sub(stats.StartedAt))
	return nil
}

type readCmd struct {
	Natal       string `help:"Path to a natal chart JSON file." required:"" type:"existingfile"`
	Date        string `help:"Evaluation date (YYYY-MM-DD, default today)."`
	Calibration string `help:"Calibration version to load (default: latest)."`
}

func (c *readCmd) Run(app *appContext) error {
	set, err := loadCalibration(app, c.Calibration)
	if err != nil {
		return err
	}
	engine := meters.NewEngine(app.registry, app.labels, set)

	raw, err := os.ReadFile(c.Natal)
	if err != nil {
		return err
	}
	var natal chart.NatalChart
	if err := json.Unmarshal(raw, &natal); err != nil {
		return fmt.Errorf("parse natal chart: %w", err)
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if c.Date != "" {
		if date, err = time.Parse("2006-01-02", c.Date); err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	// Mean-motion transit positions; close enough for a local preview.
	day, err := engine.ComputeDay(&natal, ephemeris.TransitAt(date), nil)
	if err != nil {
		return err
	}

	fmt.Printf("%-16s %-8s %9s %9s %9s  %s\n", "METER", "GROUP", "INTENSITY", "HARMONY", "UNIFIED", "STATE")
	for _, m := range day.Meters {
		fmt.Printf("%-16s %-8s %9.1f %9.1f %9.1f  %s\n",
			m.MeterID, m.Group, m.Intensity, m.Harmony, m.UnifiedScore, m.StateLabel)
	}
	fmt.Println()
	for _, g := range day.Groups {
		driver := g.Driver
		if driver == "" {
			driver = "-"
		}
		fmt.Printf("%-16s %9.1f  driver=%s\n", g.Group, g.UnifiedScore, driver)
	}
	return nil
}

func loadCalibration(app *appContext, version string) (*calibration.Set, error) {
	if version == "" {
		latest, err := app.store.LatestVersion()
		if err != nil {
			return nil, err
		}
		version = latest
	}
	if version == "" {
		log.Printf("no calibration found, using theoretical fallback normalization")
		return &calibration.Set{}, nil
	}
	tables, err := app.store.LoadCalibration(version)
	if err != nil {
		return nil, err
	}
	set, err := calibration.NewSet(version, tables)
	if err != nil {
		return nil, err
	}
	if set.Meters() == 0 {
		log.Printf("calibration %s has no tables, using theoretical fallback normalization", version)
	}
	return set, nil
}

func main() {
	var flags cli
	ctx := kong.Parse(&flags,
		kong.Name("astrometer"),
		kong.Description("Aspect-scoring and calibration engine for daily astro meters."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	registry, err := meters.NewRegistry(flags.Registry)
	if err != nil {
		log.Fatalf("load registry: %v", err)
	}
	labels, err := meters.LoadLabels(registry)
	if err != nil {
		log.Fatalf("load labels: %v", err)
	}

	db, err := sql.Open("sqlite", flags.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	err = ctx.Run(&appContext{db: db, store: st, registry: registry, labels: labels})
	ctx.FatalIfErrorf(err)
}
