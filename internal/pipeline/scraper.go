package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kuria-byte/leaders-scraping/internal/cache"
	"github.com/Kuria-byte/leaders-scraping/internal/extract"
	"github.com/Kuria-byte/leaders-scraping/internal/model"
	"github.com/Kuria-byte/leaders-scraping/internal/robots"
	"github.com/Kuria-byte/leaders-scraping/internal/worker"
)

// Outcome is the per-URL result of fetching and parsing one profile page.
// Exactly one outcome exists for every submitted profile reference; a failed
// fetch or parse carries the error instead of a record.
type Outcome struct {
	Ref     extract.ProfileRef
	Record  *model.Politician
	Missing []string // names of expected fields absent from the page
	Err     error

	idx int // enumeration index, used to restore submission order
}

// Selection names what a run should scrape
type Selection struct {
	NationalAssembly bool
	Senate           bool
	CountyAssemblies bool
	Counties         []string // optional county allow-list
}

// Empty reports whether nothing was selected
func (s Selection) Empty() bool {
	return !s.NationalAssembly && !s.Senate && !s.CountyAssemblies
}

// Scraper orchestrates listing discovery, concurrent profile scraping, and
// outcome collection for the selected chambers.
type Scraper struct {
	cfg     *model.Config
	fetcher *Fetcher
	log     *zap.Logger
}

// NewScraper wires a scraper from configuration
func NewScraper(cfg *model.Config, log *zap.Logger) *Scraper {
	if log == nil {
		log = zap.NewNop()
	}

	var pageCache cache.Cache
	if cfg.Cache.Enabled {
		pageCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var robotsChecker *robots.Checker
	if cfg.HTTP.RespectRobots {
		robotsChecker = robots.NewChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	return &Scraper{
		cfg: cfg,
		fetcher: NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.Retries, pageCache, limiter, robotsChecker, log),
		log: log,
	}
}

// RunResult summarizes one complete run
type RunResult struct {
	Outcomes []Outcome
	Duration time.Duration
}

// CountPerChamber tallies successful records per chamber
func (r *RunResult) CountPerChamber() map[model.Chamber]int {
	counts := make(map[model.Chamber]int)
	for _, outcome := range r.Outcomes {
		if outcome.Err == nil && outcome.Record != nil {
			counts[outcome.Record.Category]++
		}
	}
	return counts
}

// Errors returns the outcomes that failed
func (r *RunResult) Errors() []Outcome {
	var failed []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Run scrapes every selected chamber and returns all outcomes
func (s *Scraper) Run(ctx context.Context, sel Selection) (*RunResult, error) {
	start := time.Now()
	var outcomes []Outcome

	if sel.NationalAssembly {
		s.log.Info("scraping chamber", zap.String("chamber", string(model.ChamberNationalAssembly)))
		chamberOutcomes, err := s.ScrapeChamber(ctx, model.ChamberNationalAssembly)
		if err != nil {
			s.log.Error("chamber scrape failed", zap.String("chamber", string(model.ChamberNationalAssembly)), zap.Error(err))
		}
		outcomes = append(outcomes, chamberOutcomes...)
	}

	if sel.Senate {
		s.log.Info("scraping chamber", zap.String("chamber", string(model.ChamberSenate)))
		chamberOutcomes, err := s.ScrapeChamber(ctx, model.ChamberSenate)
		if err != nil {
			s.log.Error("chamber scrape failed", zap.String("chamber", string(model.ChamberSenate)), zap.Error(err))
		}
		outcomes = append(outcomes, chamberOutcomes...)
	}

	if sel.CountyAssemblies {
		countyOutcomes, err := s.ScrapeCountyAssemblies(ctx, sel.Counties)
		if err != nil {
			s.log.Error("county assemblies scrape failed", zap.Error(err))
		}
		outcomes = append(outcomes, countyOutcomes...)
	}

	return &RunResult{
		Outcomes: outcomes,
		Duration: time.Since(start),
	}, nil
}

// ScrapeChamber scrapes one chamber's default listing (with pagination) and
// fans the profile pages out over the worker pool.
func (s *Scraper) ScrapeChamber(ctx context.Context, chamber model.Chamber) ([]Outcome, error) {
	return s.scrapeListing(ctx, s.listingURL(chamber), chamber, "")
}

// scrapeListing scrapes an explicit listing URL. county carries the county
// name for county-assembly listings and is empty otherwise.
func (s *Scraper) scrapeListing(ctx context.Context, listURL string, chamber model.Chamber, county string) ([]Outcome, error) {
	refs, err := s.collectRefs(ctx, listURL, chamber, county)
	if err != nil {
		return nil, err
	}

	return s.scrapeProfiles(ctx, refs), nil
}

// ScrapeCountyAssemblies walks the county index page and scrapes each county
// assembly listing, optionally restricted to an allow-list of county names.
func (s *Scraper) ScrapeCountyAssemblies(ctx context.Context, allowlist []string) ([]Outcome, error) {
	indexURL := s.listingURL(model.ChamberCountyAssemblies)

	html, err := s.fetcher.FetchWithRetry(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch county index: %w", err)
	}

	counties, err := extract.ParseCountyIndex(html, indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse county index: %w", err)
	}

	allowed := make(map[string]bool, len(allowlist))
	for _, name := range allowlist {
		allowed[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var outcomes []Outcome
	for _, countyRef := range counties {
		if len(allowed) > 0 && !allowed[strings.ToLower(countyRef.Name)] {
			continue
		}

		s.log.Info("scraping county assembly", zap.String("county", countyRef.Name))

		countyOutcomes, err := s.scrapeListing(ctx, countyRef.URL, model.ChamberCountyAssemblies, countyRef.Name)
		if err != nil {
			s.log.Error("county listing failed", zap.String("county", countyRef.Name), zap.Error(err))
			continue
		}

		outcomes = append(outcomes, countyOutcomes...)
	}

	return outcomes, nil
}

// collectRefs fetches a listing page plus its pagination and returns every
// profile reference found, in listing order.
func (s *Scraper) collectRefs(ctx context.Context, listURL string, chamber model.Chamber, county string) ([]extract.ProfileRef, error) {
	html, err := s.fetcher.FetchWithRetry(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	refs, err := extract.ParseListing(html, listURL, chamber)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	pages, err := extract.PaginationLinks(html, listURL)
	if err != nil {
		return nil, fmt.Errorf("parse pagination: %w", err)
	}

	for _, pageURL := range pages {
		s.log.Info("processing listing page", zap.String("url", pageURL))

		pageHTML, err := s.fetcher.FetchWithRetry(ctx, pageURL)
		if err != nil {
			s.log.Warn("listing page failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}

		pageRefs, err := extract.ParseListing(pageHTML, pageURL, chamber)
		if err != nil {
			s.log.Warn("listing page parse failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		refs = append(refs, pageRefs...)
	}

	for i := range refs {
		refs[i].County = county
	}

	s.log.Info("found politicians", zap.String("chamber", string(chamber)), zap.Int("count", len(refs)))

	return refs, nil
}

// scrapeProfiles fans profile fetch+parse out over the pool and returns one
// outcome per reference, in the original enumeration order.
func (s *Scraper) scrapeProfiles(ctx context.Context, refs []extract.ProfileRef) []Outcome {
	if len(refs) == 0 {
		return nil
	}

	pool := worker.NewPool(s.cfg.Scrape.Workers)
	pool.Start()

	for i, ref := range refs {
		pool.Submit(&profileJob{index: i, ref: ref, scraper: s})
	}

	results := pool.Wait()

	outcomes := make([]Outcome, 0, len(results))
	for _, result := range results {
		pr := result.(*profileResult)
		outcomes = append(outcomes, pr.outcome)
	}

	// Pool results arrive in completion order; restore enumeration order so
	// output is independent of scheduling.
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].idx < outcomes[j].idx
	})

	return outcomes
}

func (s *Scraper) listingURL(chamber model.Chamber) string {
	return fmt.Sprintf("%s/parliament/%s/", strings.TrimRight(s.cfg.BaseURL, "/"), chamber)
}

// profileJob fetches and parses one profile page
type profileJob struct {
	index   int
	ref     extract.ProfileRef
	scraper *Scraper
}

type profileResult struct {
	outcome Outcome
}

func (r *profileResult) GetError() error { return r.outcome.Err }

// Execute implements worker.Job
func (j *profileJob) Execute(ctx context.Context) worker.Result {
	j.scraper.log.Info("getting details", zap.String("name", j.ref.Name), zap.String("url", j.ref.ProfileURL))

	outcome := Outcome{Ref: j.ref, idx: j.index}

	html, err := j.scraper.fetcher.FetchWithRetry(ctx, j.ref.ProfileURL)
	if err != nil {
		j.scraper.log.Warn("profile fetch failed", zap.String("name", j.ref.Name), zap.Error(err))
		outcome.Err = err
		return &profileResult{outcome: outcome}
	}

	record, missing, err := extract.ParseProfile(html, j.ref)
	if err != nil {
		j.scraper.log.Warn("profile parse failed", zap.String("name", j.ref.Name), zap.Error(err))
		outcome.Err = err
		return &profileResult{outcome: outcome}
	}

	outcome.Record = record
	outcome.Missing = missing
	return &profileResult{outcome: outcome}
}
