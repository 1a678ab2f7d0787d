package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/product-compare/internal/browser"
	"github.com/maltedev/product-compare/internal/catalog"
	"github.com/maltedev/product-compare/internal/config"
	"github.com/maltedev/product-compare/internal/logging"
	"github.com/maltedev/product-compare/internal/models"
	"github.com/maltedev/product-compare/internal/ratelimit"
	"github.com/maltedev/product-compare/internal/scraper"
)

func main() {
	var (
		keyword   = flag.String("keyword", "", "Search keyword sent to momo and PChome")
		query     = flag.String("query", "", "Label stored as each product's query (defaults to keyword)")
		max       = flag.Int("max", 50, "Maximum products per platform")
		check     = flag.Bool("check", false, "Only check whether both platforms have -target listings")
		target    = flag.Int("target", 100, "Listing count required by -check")
		xlsx      = flag.String("xlsx", "", "Also write both catalogs to this .xlsx file")
		momoOut   = flag.String("momo-out", "", "momo output file (defaults to MOMO_FILE)")
		pchomeOut = flag.String("pchome-out", "", "PChome output file (defaults to PCHOME_FILE)")
		headless  = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if *keyword == "" {
		logger.Error("-keyword is required")
		flag.Usage()
		os.Exit(2)
	}
	if *query == "" {
		*query = *keyword
	}
	if *momoOut == "" {
		*momoOut = cfg.Console.MomoFile
	}
	if *pchomeOut == "" {
		*pchomeOut = cfg.Console.PchomeFile
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	userAgent := ""
	if len(cfg.Scraper.UserAgents) > 0 {
		userAgent = cfg.Scraper.UserAgents[0]
	}
	browserOpts := browser.FromConfig(cfg.Browser, userAgent)
	browserOpts.Headless = *headless && cfg.Browser.Headless

	b, err := browser.New(browserOpts, logger)
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	opts := scraper.OptionsFromConfig(cfg.Scraper)
	momo := scraper.NewMomoScraper(b,
		ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax), opts, logger)
	pchome := scraper.NewPchomeScraper("",
		ratelimit.NewTokenLimiter(cfg.Scraper.PchomeRPS), opts, logger)

	if *check {
		report := scraper.CheckCounts(ctx, *keyword, *target, momo, pchome)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error("failed to write report", "error", err)
		}
		if !report.BothEnough() {
			os.Exit(1)
		}
		return
	}

	momoProducts := collect(ctx, logger, momo, *keyword, *query, *max, *momoOut)
	pchomeProducts := collect(ctx, logger, pchome, *keyword, *query, *max, *pchomeOut)

	if *xlsx != "" {
		if err := catalog.WriteWorkbook(*xlsx, momoProducts, pchomeProducts); err != nil {
			logger.Error("failed to write workbook", "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written", "path", *xlsx)
	}
}

// collect scrapes one platform and writes its catalog. A failed platform is
// logged and saved as an empty list so the console still starts.
func collect(ctx context.Context, logger *slog.Logger, s scraper.Scraper, keyword, query string, max int, path string) []models.Product {
	products, err := s.Search(ctx, keyword, max)
	if err != nil {
		logger.Error("scrape failed", "platform", s.Platform(), "error", err)
		products = []models.Product{}
	}

	products = scraper.Label(products, query)

	if err := catalog.Save(path, products); err != nil {
		logger.Error("failed to save catalog", "platform", s.Platform(), "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("catalog saved", "platform", s.Platform(), "path", path, "count", len(products))
	return products
}
