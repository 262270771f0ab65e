package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"nbadata-backend/lib/configutil"
	"nbadata-backend/lib/restyutil"
	"nbadata-backend/lib/scrapers/hoopshype"
	"nbadata-backend/lib/scrapers/nbastats"
	"nbadata-backend/lib/serviceutil"
	"nbadata-backend/lib/telemetry"
	"nbadata-backend/services/collector"

	"github.com/spf13/cobra"
)

type Config struct {
	StatsBaseUrl      string `json:"stats_base_url"`
	SalaryBaseUrl     string `json:"salary_base_url"`
	Season            string `json:"season"`
	OutputFile        string `json:"output_file"`
	RequestIntervalMs int    `json:"request_interval_ms"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("collector.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}

	if cfg.StatsBaseUrl == "" {
		cfg.StatsBaseUrl = "https://stats.nba.com/stats"
	}
	if cfg.SalaryBaseUrl == "" {
		cfg.SalaryBaseUrl = "https://hoopshype.com"
	}
	if cfg.Season == "" {
		cfg.Season = nbastats.CurrentSeason(time.Now())
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "nba_active_players_dataset.csv"
	}
	if cfg.RequestIntervalMs == 0 {
		cfg.RequestIntervalMs = 1000
	}
	return cfg
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "collector assembles the active-player NBA dataset into a csv file.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		telemetry.InitSlog(verbose)
		tel, err := telemetry.SetupFromEnv(ctx, "collector")
		if err == nil {
			defer tel.Shutdown(context.Background())
			stopPerfStats := telemetry.WatchPerfStats(ctx, time.Second*30)
			defer stopPerfStats()
		} else if !os.IsNotExist(err) {
			slog.Warn("telemetry setup failed, continuing without exporters", "err", err)
		}

		if verbose {
			nbastats.SetRestyInstrumentOutput(
				restyutil.NewFilesystemOutput("resty_telemetry/nbastats"),
			)
			hoopshype.SetRestyInstrumentOutput(
				restyutil.NewFilesystemOutput("resty_telemetry/hoopshype"),
			)
		}

		cfg := readConfig()
		service := collector.NewService(
			nbastats.NewClient(nbastats.ClientOptions{
				BaseUrl: cfg.StatsBaseUrl,
				Season:  cfg.Season,
			}),
			hoopshype.NewClient(hoopshype.ClientOptions{
				BaseUrl: cfg.SalaryBaseUrl,
			}),
			collector.Options{
				RequestInterval: time.Duration(cfg.RequestIntervalMs) * time.Millisecond,
				OutputFile:      cfg.OutputFile,
			},
		)

		report, err := service.Run(ctx)
		if err != nil {
			serviceutil.Fatal("pipeline failed", err)
		}

		fmt.Println(renderSummary(report))
		fmt.Println(report.Merged.Render(10))
	},
}

func ExecuteContext(ctx context.Context) {
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"enable debug logging and request transcripts",
	)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
