// Package collector runs the full dataset collection pipeline: roster
// lookup, three per-player collection loops, the left-join aggregation
// and the CSV sink.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"nbadata-backend/lib/scrapers/hoopshype"
	"nbadata-backend/lib/scrapers/nbastats"
	"nbadata-backend/lib/table"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/collector")

// StatsAPI is the slice of the stats client the pipeline consumes.
type StatsAPI interface {
	FetchActivePlayers(ctx context.Context) ([]nbastats.Player, error)
	FetchCareerStats(ctx context.Context, playerID int) (table.Table, error)
	FetchHeadlineStats(ctx context.Context, playerID int) (table.Table, error)
}

// SalarySite is the slice of the salary client the pipeline consumes.
type SalarySite interface {
	FetchPlayerSalaries(ctx context.Context, fullName string) ([]hoopshype.Salary, error)
}

type Options struct {
	// pause after every per-player request, regardless of outcome
	RequestInterval time.Duration
	OutputFile      string
}

type Service struct {
	stats    StatsAPI
	salaries SalarySite
	options  Options
}

func NewService(stats StatsAPI, salaries SalarySite, options Options) Service {
	return Service{
		stats:    stats,
		salaries: salaries,
		options:  options,
	}
}

// Skip records a player excluded from one source because their fetch
// failed. The player contributes zero rows to that source; the run
// continues.
type Skip struct {
	Player nbastats.Player
	Err    error
}

// Collection is the outcome of one per-player collection loop.
type Collection struct {
	Table   table.Table
	Skipped []Skip
}

func (s Service) pause(ctx context.Context) {
	if s.options.RequestInterval <= 0 {
		return
	}
	select {
	case <-time.After(s.options.RequestInterval):
	case <-ctx.Done():
	}
}

// FetchRoster returns the active player list. Unlike the per-player
// loops, a failure here is returned to the caller and aborts the run.
func (s Service) FetchRoster(ctx context.Context) ([]nbastats.Player, error) {
	ctx, span := tracer.Start(ctx, "FetchRoster")
	defer span.End()

	players, err := s.stats.FetchActivePlayers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, fmt.Errorf("fetch active players: %w", err)
	}
	return players, nil
}

// CollectStats fetches career statistics for every player, tagging
// each row with player_id.
func (s Service) CollectStats(ctx context.Context, players []nbastats.Player) Collection {
	ctx, span := tracer.Start(ctx, "CollectStats")
	defer span.End()

	var out Collection
	for _, player := range players {
		if ctx.Err() != nil {
			break
		}
		stats, err := s.stats.FetchCareerStats(ctx, player.ID)
		if err != nil {
			slog.WarnContext(
				ctx, "failed to fetch stats for player",
				"player", player.FullName,
				"err", err,
			)
			out.Skipped = append(out.Skipped, Skip{Player: player, Err: err})
			s.pause(ctx)
			continue
		}
		if !stats.IsEmpty() {
			stats.AddConstColumn("player_id", strconv.Itoa(player.ID))
			out.Table.Concat(stats)
		}
		s.pause(ctx)
	}
	return out
}

// CollectAwards fetches headline stats for every player, tagging each
// row with player_id.
func (s Service) CollectAwards(ctx context.Context, players []nbastats.Player) Collection {
	ctx, span := tracer.Start(ctx, "CollectAwards")
	defer span.End()

	var out Collection
	for _, player := range players {
		if ctx.Err() != nil {
			break
		}
		awards, err := s.stats.FetchHeadlineStats(ctx, player.ID)
		if err != nil {
			slog.WarnContext(
				ctx, "failed to fetch awards for player",
				"player", player.FullName,
				"err", err,
			)
			out.Skipped = append(out.Skipped, Skip{Player: player, Err: err})
			s.pause(ctx)
			continue
		}
		if !awards.IsEmpty() {
			awards.AddConstColumn("player_id", strconv.Itoa(player.ID))
			out.Table.Concat(awards)
		}
		s.pause(ctx)
	}
	return out
}

// CollectSalaries scrapes the salary history of every player, tagging
// each row with full_name (the only join key the salary site offers).
func (s Service) CollectSalaries(ctx context.Context, players []nbastats.Player) Collection {
	ctx, span := tracer.Start(ctx, "CollectSalaries")
	defer span.End()

	var out Collection
	for _, player := range players {
		if ctx.Err() != nil {
			break
		}
		salaries, err := s.salaries.FetchPlayerSalaries(ctx, player.FullName)
		if err != nil {
			slog.WarnContext(
				ctx, "failed to fetch salaries for player",
				"player", player.FullName,
				"err", err,
			)
			out.Skipped = append(out.Skipped, Skip{Player: player, Err: err})
			s.pause(ctx)
			continue
		}
		if len(salaries) > 0 {
			rows := table.New("season", "salary")
			for _, salary := range salaries {
				rows.Append(salary.Season, salary.Amount)
			}
			rows.AddConstColumn("full_name", player.FullName)
			out.Table.Concat(rows)
		}
		s.pause(ctx)
	}
	return out
}

// Save writes the table to filename as CSV, truncating any existing
// file.
func (s Service) Save(merged table.Table, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}

	err = merged.WriteCSV(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return file.Close()
}

// Report summarizes one pipeline run.
type Report struct {
	Players    int
	Stats      Collection
	Awards     Collection
	Salaries   Collection
	Merged     table.Table
	OutputFile string
}

// Run executes the whole pipeline. A roster fetch failure, a cancelled
// context or a failure to write the output aborts the run; per-player
// failures are reported as skips.
func (s Service) Run(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	slog.InfoContext(ctx, "fetching active players")
	players, err := s.FetchRoster(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "roster fetch failed")
		return Report{}, err
	}

	slog.InfoContext(ctx, "fetching player stats", "players", len(players))
	stats := s.CollectStats(ctx, players)

	slog.InfoContext(ctx, "fetching player awards", "players", len(players))
	awards := s.CollectAwards(ctx, players)

	slog.InfoContext(ctx, "scraping player salaries", "players", len(players))
	salaries := s.CollectSalaries(ctx, players)

	// an interrupted run must not pass off a truncated dataset as
	// the real thing
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "run cancelled")
		return Report{}, fmt.Errorf("run cancelled: %w", err)
	}

	slog.InfoContext(ctx, "merging data")
	merged := Merge(PlayersTable(players), stats.Table, awards.Table, salaries.Table)

	slog.InfoContext(ctx, "saving dataset", "file", s.options.OutputFile, "rows", len(merged.Rows))
	err = s.Save(merged, s.options.OutputFile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save dataset")
		return Report{}, err
	}

	return Report{
		Players:    len(players),
		Stats:      stats,
		Awards:     awards,
		Salaries:   salaries,
		Merged:     merged,
		OutputFile: s.options.OutputFile,
	}, nil
}
