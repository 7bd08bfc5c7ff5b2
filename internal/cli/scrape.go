package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kuria-byte/leaders-scraping/internal/aggregate"
	"github.com/Kuria-byte/leaders-scraping/internal/model"
	"github.com/Kuria-byte/leaders-scraping/internal/pipeline"
)

var (
	scrapeAll        bool
	nationalAssembly bool
	senate           bool
	countyAssemblies bool
	countiesList     string
	threads          int
	noThreading      bool
	outputDir        string
	outputFormat     string
	baseURL          string
	timeout          time.Duration
	userAgent        string
	retries          int
	noCache          bool
	noRobots         bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape politician profiles into JSON datasets",
	Long: `Scrape fetches listing pages for the selected chambers, follows each
politician's profile page, and writes one JSON file per politician plus
per-chamber summaries, per-county datasets, and run statistics.

You must select what to scrape with --all or one or more category flags.
Individual page failures are logged and counted, never fatal.

Example:
  mzalendo scrape --all
  mzalendo scrape --national-assembly
  mzalendo scrape --senate --county-assemblies
  mzalendo scrape --counties "Nairobi,Mombasa,Kisumu"
  mzalendo scrape --all --threads 10 --output-dir ./my_data
  mzalendo scrape --all --format ahmed`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	// Category selection flags
	scrapeCmd.Flags().BoolVar(&scrapeAll, "all", false, "scrape all categories")
	scrapeCmd.Flags().BoolVar(&nationalAssembly, "national-assembly", false, "scrape the National Assembly")
	scrapeCmd.Flags().BoolVar(&senate, "senate", false, "scrape the Senate")
	scrapeCmd.Flags().BoolVar(&countyAssemblies, "county-assemblies", false, "scrape County Assemblies")
	scrapeCmd.Flags().StringVar(&countiesList, "counties", "", "comma-separated list of specific counties to scrape")

	// Concurrency flags
	scrapeCmd.Flags().IntVar(&threads, "threads", 5, "number of concurrent workers")
	scrapeCmd.Flags().BoolVar(&noThreading, "no-threading", false, "disable threading for debugging (sequential scraping)")

	// Output flags
	scrapeCmd.Flags().StringVar(&outputDir, "output-dir", "kenyan_leaders_data", "output directory")
	scrapeCmd.Flags().StringVar(&outputFormat, "format", model.FormatStandard, "output format: standard or ahmed (matches provided example)")

	// HTTP flags
	scrapeCmd.Flags().StringVar(&baseURL, "base-url", "https://mzalendo.com", "base URL of the source site")
	scrapeCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	scrapeCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default: desktop browser UA)")
	scrapeCmd.Flags().IntVar(&retries, "retries", 3, "fetch attempts per URL")
	scrapeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable page cache (force fresh fetches)")
	scrapeCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
}

func runScrape(cmd *cobra.Command, args []string) error {
	sel := pipeline.Selection{
		NationalAssembly: scrapeAll || nationalAssembly,
		Senate:           scrapeAll || senate,
		CountyAssemblies: scrapeAll || countyAssemblies || countiesList != "",
	}
	if countiesList != "" {
		sel.Counties = strings.Split(countiesList, ",")
	}

	if sel.Empty() {
		return fmt.Errorf("you must specify what to scrape: use --all or one of --national-assembly, --senate, --county-assemblies, --counties")
	}

	if !model.ValidFormat(outputFormat) {
		return fmt.Errorf("unknown output format %q (valid: %s, %s)", outputFormat, model.FormatStandard, model.FormatAhmed)
	}

	// Build configuration from flags
	cfg := model.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.Retries = retries
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	cfg.HTTP.RespectRobots = !noRobots
	cfg.Cache.Enabled = !noCache
	cfg.Scrape.Workers = threads
	if noThreading {
		cfg.Scrape.Workers = 1
	}
	cfg.Output.Dir = outputDir
	cfg.Output.Format = outputFormat
	cfg.Output.Verbose = verbose

	printBanner(cfg, sel)

	// A failure to set up the output directory or run log is the only kind
	// of error that aborts the run.
	log, cleanup, err := pipeline.NewRunLogger(cfg.Output.Dir, verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	scraper := pipeline.NewScraper(cfg, log)

	result, err := scraper.Run(context.Background(), sel)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	writer := aggregate.NewWriter(cfg.Output)
	stats, err := writer.WriteAll(result.Outcomes)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printSummary(cfg, result, stats)

	return nil
}

func printBanner(cfg *model.Config, sel pipeline.Selection) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Mzalendo Kenya Politicians Data Scraper\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Source:       %s\n", cfg.BaseURL)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Scrape.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Format:       %s\n", cfg.Output.Format)
	if len(sel.Counties) > 0 {
		fmt.Fprintf(os.Stderr, "  Counties:     %s\n", strings.Join(sel.Counties, ", "))
	}
	fmt.Fprintf(os.Stderr, "\n")
}

func printSummary(cfg *model.Config, result *pipeline.RunResult, stats *aggregate.Statistics) {
	counts := result.CountPerChamber()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Scraping Summary\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  National Assembly Members: %d\n", counts[model.ChamberNationalAssembly])
	fmt.Fprintf(os.Stderr, "  Senate Members:            %d\n", counts[model.ChamberSenate])
	fmt.Fprintf(os.Stderr, "  County Assembly Members:   %d\n", counts[model.ChamberCountyAssemblies])
	fmt.Fprintf(os.Stderr, "  Total Leaders Scraped:     %d\n", stats.TotalLeaders)
	fmt.Fprintf(os.Stderr, "  Failures:                  %d\n", stats.Errors)
	fmt.Fprintf(os.Stderr, "  Total Time:                %s\n", result.Duration.Round(time.Second))
	fmt.Fprintf(os.Stderr, "\n")

	if abs, err := filepath.Abs(cfg.Output.Dir); err == nil {
		fmt.Fprintf(os.Stderr, "All data has been saved to: %s\n", abs)
	} else {
		fmt.Fprintf(os.Stderr, "All data has been saved to: %s\n", cfg.Output.Dir)
	}
}
