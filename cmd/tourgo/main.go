package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"tourgo/pkg/agent"
	"tourgo/pkg/cache"
	"tourgo/pkg/config"
	"tourgo/pkg/db"
	"tourgo/pkg/judge"
	"tourgo/pkg/logging"
	"tourgo/pkg/model"
	"tourgo/pkg/orchestrator"
	"tourgo/pkg/request"
	"tourgo/pkg/route"
	"tourgo/pkg/tracker"
	"tourgo/pkg/version"
)

var (
	configPath = flag.String("config", "configs/tourgo.yaml", "Path to config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	// .env is optional; credentials may come from the config file or the
	// real environment.
	_ = godotenv.Load()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("TourGo started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize db: %w", err)
	}
	defer dbConn.Close()
	if err := dbConn.PruneCache(time.Duration(appCfg.Cache.TTL)); err != nil {
		slog.Warn("Cache prune failed", "error", err)
	}

	tr := tracker.New()
	rc := request.New(&appCfg.Request, cache.NewSQLiteCache(dbConn), tr)

	printBanner()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Enter Google Maps URL (or 'stop' to exit): ")
		if !scanner.Scan() {
			fmt.Println("\nReceived EOF, exiting...")
			break
		}
		input := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(input, "stop") {
			fmt.Println("\nStopping tour guide...")
			break
		}
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "http") {
			fmt.Println("ERROR: Input doesn't look like a URL. Please enter a Google Maps URL.")
			continue
		}

		runID := "run_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
		processMapURL(ctx, input, runID, appCfg, rc, tr)
	}

	fmt.Println("\nGoodbye!")
	return nil
}

// processMapURL handles one run: route extraction, orchestration, summary.
func processMapURL(ctx context.Context, mapsURL, runID string, cfg *config.Config, rc *request.Client, tr *tracker.Tracker) {
	routeClient := route.NewClient(&cfg.Route, rc, runID)
	locations, err := routeClient.ExtractLocations(ctx, mapsURL)
	if err != nil {
		fmt.Printf("ERROR: Failed to extract route locations: %v\n", err)
		slog.Error("Route extraction failed", "run_id", runID, "component", "main", "error", err)
		return
	}
	if len(locations) == 0 {
		fmt.Println("ERROR: No locations extracted from URL")
		return
	}

	fmt.Printf("\nGot map URL: %s\n", mapsURL)
	fmt.Printf("Run ID: %s\n", runID)
	fmt.Printf("Added search tasks for %d locations to orchestrator\n", len(locations))
	fmt.Println("Processing...")
	fmt.Println()

	pool := agent.BuildPool(ctx, runID, &cfg.Agents, rc)
	engine := judge.NewEngine(runID)
	orch := orchestrator.New(runID, pool, engine, tr, &cfg.Orchestrator)

	decisions, err := orch.Run(ctx, locations)
	if err != nil {
		fmt.Printf("ERROR: Processing failed: %v\n", err)
		slog.Error("Processing failed", "run_id", runID, "component", "main", "error", err)
		return
	}

	printSummary(runID, locations, decisions)
	printStats(tr)
}

func printBanner() {
	line := strings.Repeat("=", 70)
	fmt.Println(line)
	fmt.Println("TourGo - Multimedia Content Generator")
	fmt.Println(line)
	fmt.Println("Enter Google Maps walking route URLs to process.")
	fmt.Println("Type 'stop' to exit the program.")
	fmt.Println(line)
	fmt.Println()
}

func printSummary(runID string, locations []model.Location, decisions map[string]model.Decision) {
	line := strings.Repeat("=", 120)
	fmt.Println(line)
	fmt.Println("TOUR GUIDE SUMMARY")
	fmt.Println(line)

	for _, loc := range locations {
		decision, ok := decisions[loc.ID]
		if !ok {
			continue
		}
		slog.Info("Decision reasoning", "run_id", runID, "component", "main",
			"point", loc.Order+1, "reasoning", decision.Reasoning)
		fmt.Println(formatDecision(loc, decision, len(locations)))
	}

	fmt.Println(line)
	fmt.Printf("Complete! Processed %d/%d locations. Check log file for details.\n\n",
		len(decisions), len(locations))
}

// formatDecision renders one summary row:
// "  Point  3/12: Name -> TEXT : Title".
func formatDecision(loc model.Location, d model.Decision, total int) string {
	title := d.Content["title"]
	if title == "" {
		title = "N/A"
	}
	return fmt.Sprintf("  Point %2d/%d: %-50s -> %-5s: %s",
		loc.Order+1, total, clip(loc.Name, 50), strings.ToUpper(string(d.Kind)), clip(title, 50))
}

func printStats(tr *tracker.Tracker) {
	snapshot := tr.Snapshot()
	providers := make([]string, 0, len(snapshot))
	for p := range snapshot {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	for _, p := range providers {
		s := snapshot[p]
		slog.Info("Provider stats", "component", "main", "provider", p,
			"api_success", s.APISuccess, "api_failures", s.APIFailures,
			"cache_hits", s.CacheHits, "cache_misses", s.CacheMisses,
			"decisions", s.Decisions)
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
