package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Kuria-byte/leaders-scraping/internal/model"
	"github.com/Kuria-byte/leaders-scraping/internal/pipeline"
)

// Writer serializes a run's outcomes into the output directory. The output
// location and format come from explicit configuration, never shared state.
type Writer struct {
	cfg model.OutputConfig
}

// NewWriter creates a writer for the given output configuration
func NewWriter(cfg model.OutputConfig) *Writer {
	return &Writer{cfg: cfg}
}

// WriteAll writes every output file for the run: per-politician files,
// per-chamber summaries, per-county files, the combined dataset, the
// statistics document, and (for the alternate format) the formatted dataset.
// It returns the computed statistics.
func (w *Writer) WriteAll(outcomes []pipeline.Outcome) (*Statistics, error) {
	if err := w.ensureLayout(); err != nil {
		return nil, err
	}

	records := successfulRecords(outcomes)
	EnrichCounties(records)

	for _, record := range records {
		if err := w.writeRecord(record); err != nil {
			return nil, err
		}
	}

	byChamber := groupByChamber(records)
	for _, chamber := range model.Chambers() {
		path := filepath.Join(w.cfg.Dir, fmt.Sprintf("%s_summary.json", chamber))
		if err := writeJSON(path, recordsOrEmpty(byChamber[chamber])); err != nil {
			return nil, err
		}
	}

	if err := writeJSON(filepath.Join(w.cfg.Dir, "all_leaders.json"), recordsOrEmpty(records)); err != nil {
		return nil, err
	}

	if err := w.writeCountyData(records); err != nil {
		return nil, err
	}

	stats := Compute(outcomes)
	if err := writeJSON(filepath.Join(w.cfg.Dir, "statistics.json"), stats); err != nil {
		return nil, err
	}

	if w.cfg.Format == model.FormatAhmed {
		if err := writeJSON(filepath.Join(w.cfg.Dir, "formatted_leaders.json"), FormatLeaders(records)); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// ensureLayout creates the output directory tree
func (w *Writer) ensureLayout() error {
	for _, chamber := range model.Chambers() {
		dir := filepath.Join(w.cfg.Dir, string(chamber))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(w.cfg.Dir, "counties"), 0755); err != nil {
		return fmt.Errorf("create counties directory: %w", err)
	}
	return nil
}

// writeRecord saves one politician to <dir>/<chamber>/<id>.json
func (w *Writer) writeRecord(record *model.Politician) error {
	id := model.SanitizeID(record.ID)
	if id == "" {
		id = model.SanitizeID(strings.ReplaceAll(strings.ToLower(record.Name), " ", "-"))
	}
	path := filepath.Join(w.cfg.Dir, string(record.Category), id+".json")
	return writeJSON(path, record)
}

var unsafeCountyChars = regexp.MustCompile(`[^\w\-]`)

// writeCountyData writes one file per county plus the county summary
func (w *Writer) writeCountyData(records []*model.Politician) error {
	counties := groupByCounty(records)

	names := make([]string, 0, len(counties))
	for county := range counties {
		names = append(names, county)
	}
	sort.Strings(names)

	summary := make([]countySummary, 0, len(names))
	for _, county := range names {
		leaders := counties[county]
		safe := unsafeCountyChars.ReplaceAllString(strings.ReplaceAll(strings.ToLower(county), " ", "_"), "")
		path := filepath.Join(w.cfg.Dir, "counties", safe+".json")
		if err := writeJSON(path, leaders); err != nil {
			return err
		}
		summary = append(summary, countySummary{Name: county, LeadersCount: len(leaders)})
	}

	return writeJSON(filepath.Join(w.cfg.Dir, "counties_summary.json"), summary)
}

type countySummary struct {
	Name         string `json:"name"`
	LeadersCount int    `json:"leaders_count"`
}

func successfulRecords(outcomes []pipeline.Outcome) []*model.Politician {
	var records []*model.Politician
	for _, outcome := range outcomes {
		if outcome.Err == nil && outcome.Record != nil {
			records = append(records, outcome.Record)
		}
	}
	return records
}

func groupByChamber(records []*model.Politician) map[model.Chamber][]*model.Politician {
	buckets := make(map[model.Chamber][]*model.Politician)
	for _, record := range records {
		buckets[record.Category] = append(buckets[record.Category], record)
	}
	return buckets
}

func groupByCounty(records []*model.Politician) map[string][]*model.Politician {
	buckets := make(map[string][]*model.Politician)
	for _, record := range records {
		if record.County != "" {
			buckets[record.County] = append(buckets[record.County], record)
		}
	}
	return buckets
}

// recordsOrEmpty keeps empty datasets serializing as [] instead of null
func recordsOrEmpty(records []*model.Politician) []*model.Politician {
	if records == nil {
		return []*model.Politician{}
	}
	return records
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
