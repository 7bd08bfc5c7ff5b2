package aggregate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kuria-byte/leaders-scraping/internal/model"
	"github.com/Kuria-byte/leaders-scraping/internal/pipeline"
)

func readJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func countyAssemblyOutcome(id, name, county string) pipeline.Outcome {
	return pipeline.Outcome{Record: &model.Politician{
		ID:          id,
		Name:        name,
		Category:    model.ChamberCountyAssemblies,
		Subcategory: county,
	}}
}

func TestWriteAll_Layout(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(model.OutputConfig{Dir: dir, Format: model.FormatStandard})

	// Three county assembly records spread over two counties, plus one
	// national assembly record.
	outcomes := []pipeline.Outcome{
		countyAssemblyOutcome("mca-otieno", "James Otieno", "Kisumu"),
		countyAssemblyOutcome("mca-achieng", "Mary Achieng", "Kisumu"),
		countyAssemblyOutcome("mca-mwangi", "Peter Mwangi", "Nakuru"),
		{Record: &model.Politician{
			ID: "jane-doe", Name: "Hon. Jane Doe",
			Category: model.ChamberNationalAssembly, Constituency: "Rongo",
		}},
	}

	stats, err := writer.WriteAll(outcomes)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	if stats.TotalLeaders != 4 {
		t.Errorf("expected 4 leaders in stats, got %d", stats.TotalLeaders)
	}
	if stats.Errors != 0 {
		t.Errorf("expected 0 errors in stats, got %d", stats.Errors)
	}

	// Per-record files land under their chamber directory
	for _, path := range []string{
		filepath.Join(dir, "county_assemblies", "mca-otieno.json"),
		filepath.Join(dir, "county_assemblies", "mca-achieng.json"),
		filepath.Join(dir, "county_assemblies", "mca-mwangi.json"),
		filepath.Join(dir, "national_assembly", "jane-doe.json"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing record file %s: %v", path, err)
		}
	}

	// Exactly one county file per distinct county
	var kisumu []model.Politician
	readJSON(t, filepath.Join(dir, "counties", "kisumu.json"), &kisumu)
	if len(kisumu) != 2 {
		t.Errorf("expected 2 leaders in kisumu.json, got %d", len(kisumu))
	}
	var nakuru []model.Politician
	readJSON(t, filepath.Join(dir, "counties", "nakuru.json"), &nakuru)
	if len(nakuru) != 1 {
		t.Errorf("expected 1 leader in nakuru.json, got %d", len(nakuru))
	}

	var summary []countySummary
	readJSON(t, filepath.Join(dir, "counties_summary.json"), &summary)
	// Jane Doe's constituency maps to Migori, so three counties appear
	if len(summary) != 3 {
		t.Fatalf("expected 3 counties in summary, got %d: %+v", len(summary), summary)
	}
	// Summary is sorted by county name
	if summary[0].Name != "Kisumu" || summary[1].Name != "Migori" || summary[2].Name != "Nakuru" {
		t.Errorf("unexpected summary order: %+v", summary)
	}
	if summary[0].LeadersCount != 2 {
		t.Errorf("expected Kisumu count 2, got %d", summary[0].LeadersCount)
	}

	// Unselected chambers still get a summary, serialized as []
	data, err := os.ReadFile(filepath.Join(dir, "senate_summary.json"))
	if err != nil {
		t.Fatalf("read senate summary: %v", err)
	}
	var senate []model.Politician
	if err := json.Unmarshal(data, &senate); err != nil {
		t.Fatalf("decode senate summary: %v", err)
	}
	if senate == nil {
		t.Error("expected empty summary to decode as [], got null")
	}

	var all []model.Politician
	readJSON(t, filepath.Join(dir, "all_leaders.json"), &all)
	if len(all) != 4 {
		t.Errorf("expected 4 leaders in all_leaders.json, got %d", len(all))
	}

	var written Statistics
	readJSON(t, filepath.Join(dir, "statistics.json"), &written)
	if written.TotalLeaders != stats.TotalLeaders {
		t.Errorf("statistics.json disagrees with returned stats: %d vs %d",
			written.TotalLeaders, stats.TotalLeaders)
	}

	if _, err := os.Stat(filepath.Join(dir, "formatted_leaders.json")); !os.IsNotExist(err) {
		t.Error("standard format should not write formatted_leaders.json")
	}
}

func TestGrouping_OrderIndependent(t *testing.T) {
	build := func() []*model.Politician {
		return []*model.Politician{
			{ID: "a", Category: model.ChamberCountyAssemblies, County: "Kisumu"},
			{ID: "b", Category: model.ChamberCountyAssemblies, County: "Nakuru"},
			{ID: "c", Category: model.ChamberCountyAssemblies, County: "Kisumu"},
			{ID: "d", Category: model.ChamberSenate, County: "Nakuru"},
			{ID: "e", Category: model.ChamberNationalAssembly},
		}
	}

	forward := build()
	reversed := build()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	for _, records := range [][]*model.Politician{forward, reversed} {
		byChamber := groupByChamber(records)
		if len(byChamber[model.ChamberCountyAssemblies]) != 3 ||
			len(byChamber[model.ChamberSenate]) != 1 ||
			len(byChamber[model.ChamberNationalAssembly]) != 1 {
			t.Errorf("chamber grouping depends on input order: %v", byChamber)
		}

		total := 0
		for _, bucket := range byChamber {
			total += len(bucket)
		}
		if total != len(records) {
			t.Errorf("expected every record in exactly one chamber bucket, got %d of %d", total, len(records))
		}

		byCounty := groupByCounty(records)
		if len(byCounty["Kisumu"]) != 2 || len(byCounty["Nakuru"]) != 2 {
			t.Errorf("county grouping depends on input order: %v", byCounty)
		}
		if len(byCounty) != 2 {
			t.Errorf("expected 2 county buckets, got %d", len(byCounty))
		}
	}
}

func TestWriteAll_FailedOutcomeExcluded(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(model.OutputConfig{Dir: dir, Format: model.FormatStandard})

	outcomes := []pipeline.Outcome{
		countyAssemblyOutcome("mca-otieno", "James Otieno", "Kisumu"),
		{Err: os.ErrDeadlineExceeded},
	}

	stats, err := writer.WriteAll(outcomes)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if stats.TotalLeaders != 1 {
		t.Errorf("expected 1 leader, got %d", stats.TotalLeaders)
	}
	if stats.Errors != 1 {
		t.Errorf("expected 1 error recorded, got %d", stats.Errors)
	}

	var all []model.Politician
	readJSON(t, filepath.Join(dir, "all_leaders.json"), &all)
	if len(all) != 1 {
		t.Errorf("failed outcome leaked into all_leaders.json: %d records", len(all))
	}
}

func TestWriteAll_AhmedFormat(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(model.OutputConfig{Dir: dir, Format: model.FormatAhmed})

	outcomes := []pipeline.Outcome{
		{Record: &model.Politician{
			ID: "jane-doe", Name: "Hon. Jane Doe",
			Category: model.ChamberNationalAssembly,
			Party:    "ODM",
			Election: &model.Election{ElectedDate: "2022-08-09", TotalVotes: 45210},
		}},
	}

	if _, err := writer.WriteAll(outcomes); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	var formatted []FormattedLeader
	readJSON(t, filepath.Join(dir, "formatted_leaders.json"), &formatted)
	if len(formatted) != 1 {
		t.Fatalf("expected 1 formatted leader, got %d", len(formatted))
	}
	if formatted[0].ElectedDate != "2022-08-09" || formatted[0].TotalVotes != 45210 {
		t.Errorf("election data not flattened: %+v", formatted[0])
	}
	if formatted[0].Party != "ODM" {
		t.Errorf("party changed: %q", formatted[0].Party)
	}

	// Alternate format does not replace the standard files
	if _, err := os.Stat(filepath.Join(dir, "all_leaders.json")); err != nil {
		t.Errorf("all_leaders.json missing in ahmed format: %v", err)
	}

	// Raw JSON keys are camelCase
	raw, err := os.ReadFile(filepath.Join(dir, "formatted_leaders.json"))
	if err != nil {
		t.Fatalf("read formatted_leaders.json: %v", err)
	}
	var generic []map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("decode formatted_leaders.json: %v", err)
	}
	if _, ok := generic[0]["electedDate"]; !ok {
		t.Errorf("expected camelCase electedDate key, got keys %v", keys(generic[0]))
	}
	if _, ok := generic[0]["imageUrl"]; !ok {
		t.Errorf("expected imageUrl key, got keys %v", keys(generic[0]))
	}
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
