package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/mishannn/landparser-go/internal/config"
	"github.com/mishannn/landparser-go/internal/export"
	"github.com/mishannn/landparser-go/internal/geo"
	"github.com/mishannn/landparser-go/internal/listing"
	"github.com/mishannn/landparser-go/internal/logger"
	"github.com/mishannn/landparser-go/internal/pipeline"
	"github.com/mishannn/landparser-go/internal/session"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func upMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("can't set dialect for migrations: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("can't up migrations: %w", err)
	}

	return nil
}

func parseSortKeys(s string) ([]listing.SortKey, error) {
	var keys []listing.SortKey
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key, err := listing.ParseSortKey(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

type options struct {
	lat, lon         float64
	outputDir        string
	excludeLowFloors bool
	sortKeys         []listing.SortKey
	descending       bool
}

func main() {
	var configFilePath string
	flag.StringVar(&configFilePath, "c", "config.yaml", "config file path")

	var envFilePath string
	flag.StringVar(&envFilePath, "env", ".env", "env file with provider credentials")

	var opts options
	flag.Float64Var(&opts.lat, "lat", 0, "latitude of the search center")
	flag.Float64Var(&opts.lon, "lon", 0, "longitude of the search center")
	flag.StringVar(&opts.outputDir, "o", ".", "output directory for the workbook")
	flag.BoolVar(&opts.excludeLowFloors, "exclude-low-floors", false, "drop listings on floors 1-3")
	flag.BoolVar(&opts.descending, "desc", false, "sort in descending order")

	var sortParam string
	flag.StringVar(&sortParam, "sort", string(listing.SortByPrice), "comma separated sort columns")

	flag.Parse()

	sortKeys, err := parseSortKeys(sortParam)
	if err != nil {
		log.Fatalf("can't parse sort keys: %s", err)
	}
	opts.sortKeys = sortKeys

	cfg, err := config.Load(configFilePath, envFilePath)
	if err != nil {
		log.Fatalf("can't read config: %s", err)
	}

	l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("can't create logger: %s", err)
	}

	err = run(cfg, opts, l)
	if err != nil {
		l.Error("run failed", zap.Error(err))
	}
	l.Sync()

	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options, l *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.NewPipeline(cfg.Pipeline(), pipeline.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries), l)

	state := session.NewState(0, 1)
	if err := state.Begin(); err != nil {
		return fmt.Errorf("can't start run: %w", err)
	}
	result := p.Run(ctx, geo.Coordinate{Lat: opts.lat, Lon: opts.lon}, cfg.Credentials)
	state.Finish(result)

	switch result.Signal {
	case pipeline.SignalAuthError:
		return errors.New("provider rejected credentials, refresh " + config.EnvHeaders + " and " + config.EnvCookies)
	case pipeline.SignalGenericError:
		return fmt.Errorf("can't scrape listings for district %q", result.DistrictName)
	}

	view, err := state.CurrentView(session.ViewOptions{
		ExcludeLowFloors: opts.excludeLowFloors,
		SortKeys:         opts.sortKeys,
		Ascending:        !opts.descending,
	})
	if err != nil {
		return fmt.Errorf("can't build result view: %w", err)
	}

	if len(view.Rows) == 0 {
		l.Warn("no listings found", zap.String("area", view.AreaName))
		return nil
	}

	now := time.Now()
	date := now.Format(export.DateLayout)

	data := export.NewExporter(l).Area(view.Rows, view.Summary, view.AreaName, date, view.ExcludeLowFloors)
	if data == nil {
		return errors.New("can't build workbook")
	}

	outputPath := filepath.Join(opts.outputDir, export.AreaFileName(view.AreaName, date, view.ExcludeLowFloors))
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("can't write workbook: %w", err)
	}
	l.Info("workbook saved", zap.String("path", outputPath), zap.Int("listings", len(view.Rows)), zap.Int("summary", len(view.Summary)))

	if cfg.Database.Address != "" {
		db := clickhouse.OpenDB(&clickhouse.Options{
			Addr: []string{cfg.Database.Address},
			Auth: clickhouse.Auth{
				Database: cfg.Database.Database,
				Username: cfg.Database.Username,
				Password: cfg.Database.Password,
			},
		})
		defer db.Close()

		if err := upMigrations(db); err != nil {
			return err
		}

		if err := saveStatistic(db, now, view.Summary); err != nil {
			return fmt.Errorf("can't save statistic: %w", err)
		}
		l.Info("statistic saved", zap.Int("rows", len(view.Summary)))
	}

	if cfg.Sheets.SpreadsheetID != "" {
		err := saveSummaryToSheets(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range, now, view.AreaName, view.Summary)
		if err != nil {
			return fmt.Errorf("can't save summary to sheets: %w", err)
		}
		l.Info("summary appended to sheets", zap.String("spreadsheet", cfg.Sheets.SpreadsheetID))
	}

	return nil
}
