package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"baires-rentals/config"
	"baires-rentals/models"
	"baires-rentals/notifier"
	"baires-rentals/scraper/argenprop"
	"baires-rentals/scraper/zonaprop"
	"baires-rentals/services"
	"baires-rentals/storage"
	"baires-rentals/utils"
)

const configPath = "config.yaml"

func main() {
	// .env is optional; real deployments export the variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		utils.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	cmd := "all"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx := context.Background()
	runDate := time.Now().Format("2006-01-02")

	switch cmd {
	case "argenprop":
		err = runArgenprop(ctx, cfg, runDate)
	case "zonaprop":
		err = runZonaprop(ctx, cfg, runDate)
	case "clean":
		err = runClean(cfg, runDate)
	case "alert":
		err = runAlert(ctx, cfg)
	case "report":
		err = runReport(cfg)
	case "all":
		err = runAll(ctx, cfg, runDate)
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [argenprop|zonaprop|clean|alert|report|all]\n", os.Args[0])
		os.Exit(2)
	}

	if err != nil {
		utils.Error("%s failed: %v", cmd, err)
		os.Exit(1)
	}
}

// runAll executes the daily pipeline: both fetchers, then clean, then
// alert. One dead source is survivable — the run continues on whatever
// the other source produced; both dead aborts before cleaning.
func runAll(ctx context.Context, cfg *config.Config, runDate string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	utils.Section("FETCH")
	errA := runArgenprop(ctx, cfg, runDate)
	if errA != nil {
		utils.Error("argenprop source failed: %v", errA)
	}
	errB := runZonaprop(ctx, cfg, runDate)
	if errB != nil {
		utils.Error("zonaprop source failed: %v", errB)
	}
	if errA != nil && errB != nil {
		return errors.New("both sources failed, nothing to clean")
	}

	utils.Section("CLEAN")
	if err := runClean(cfg, runDate); err != nil {
		return err
	}

	utils.Section("ALERT")
	return runAlert(ctx, cfg)
}

func runArgenprop(ctx context.Context, cfg *config.Config, runDate string) error {
	fetcher := argenprop.NewFetcher(cfg)
	listings, err := fetcher.FetchAll(ctx, runDate)
	if err != nil {
		return err
	}
	return storage.WriteRawCSV(cfg.Argenprop.RawCSVPath, listings)
}

func runZonaprop(ctx context.Context, cfg *config.Config, runDate string) error {
	browser, err := zonaprop.NewBrowser(cfg)
	if err != nil {
		return err
	}
	defer browser.Close()

	pool := zonaprop.NewWorkerPool(browser, cfg)
	listings, err := pool.Run(ctx, runDate)
	if err != nil {
		return err
	}
	return storage.WriteRawCSV(cfg.Zonaprop.RawCSVPath, listings)
}

func runClean(cfg *config.Config, runDate string) error {
	if err := cfg.ValidateFilter(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	rawA, err := storage.ReadRawCSV(cfg.Argenprop.RawCSVPath)
	if err != nil {
		return err
	}
	rawB, err := storage.ReadRawCSV(cfg.Zonaprop.RawCSVPath)
	if err != nil {
		return err
	}
	if len(rawA) == 0 && len(rawB) == 0 {
		return errors.New("no raw listings from either source")
	}

	merged := make([]models.RawListing, 0, len(rawA)+len(rawB))
	merged = append(merged, rawA...)
	merged = append(merged, rawB...)

	clean := services.CleanListings(merged, services.Filter{
		ExchangeRate: cfg.Filter.ExchangeRate,
		MinPriceUSD:  cfg.Filter.MinPriceUSD,
		MaxPriceUSD:  cfg.Filter.MaxPriceUSD,
		MinSizeM2:    cfg.Filter.MinSizeM2,
	}, runDate)

	utils.Info("Cleaned %d raw listings → %d matching", len(merged), len(clean))

	if err := storage.WriteCleanCSV(cfg.Filter.CleanCSVPath, clean); err != nil {
		return err
	}

	if cfg.Archive.Enabled {
		if err := archiveClean(cfg, clean); err != nil {
			// Archival is a side record, not the pipeline output.
			utils.Warn("Archive failed: %v", err)
		}
	}
	return nil
}

func archiveClean(cfg *config.Config, clean []models.CleanListing) error {
	archive, err := storage.NewPostgresArchive(cfg.Archive.DatabaseURL)
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.EnsureSchema(); err != nil {
		return err
	}
	if err := archive.ArchiveBatch(clean); err != nil {
		return err
	}
	utils.Success("Archived %d clean listings to PostgreSQL", len(clean))
	return nil
}

func runAlert(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	listings, err := storage.ReadCleanCSV(cfg.Filter.CleanCSVPath)
	if err != nil {
		return err
	}

	state, err := storage.OpenAlertState(cfg.AlertState.SQLitePath)
	if err != nil {
		return err
	}
	defer state.Close()

	sender := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	res := notifier.Run(ctx, listings, state, sender, cfg.MaxRetries)

	utils.Info("Alerts: sent=%d skipped=%d failed=%d", res.Sent, res.Skipped, res.Failed)
	for _, url := range res.FailedURLs {
		utils.Warn("Send failed, will retry next run: %s", url)
	}

	// Every send failing smells like a dead token or chat id, not flaky
	// listings; surface that as a stage failure.
	if res.Failed > 0 && res.Sent == 0 && res.Skipped == 0 {
		return fmt.Errorf("all %d alert sends failed", res.Failed)
	}
	return nil
}

func runReport(cfg *config.Config) error {
	listings, err := storage.ReadCleanCSV(cfg.Filter.CleanCSVPath)
	if err != nil {
		return err
	}
	services.PrintReport(services.GenerateReport(listings))
	return nil
}
