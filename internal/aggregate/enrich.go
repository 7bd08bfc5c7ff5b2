// Package aggregate groups scraped records by chamber and county, computes
// run statistics, and writes the JSON output files.
package aggregate

import (
	"github.com/Kuria-byte/leaders-scraping/internal/model"
)

// constituencyCounty maps constituencies to their counties for records whose
// profile page carries no county. Partial; extend as gaps show up in output.
var constituencyCounty = map[string]string{
	"Tarbaj":           "Wajir",
	"Lafey":            "Mandera",
	"Kamukunji":        "Nairobi",
	"Rongo":            "Migori",
	"Tigania East":     "Meru",
	"Wajir East":       "Wajir",
	"Wajir South":      "Wajir",
	"Bura":             "Tana River",
	"Lomas":            "Tana River",
	"Bomachoge Chache": "Kisii",
	"Ijara":            "Garissa",
	"Nyali":            "Mombasa",
	"Rangwe":           "Homa Bay",
	"Turkana South":    "Turkana",
}

// EnrichCounties fills in the county for national assembly and senate
// records that have a known constituency but no county. County assembly
// records already carry their county from the index page.
func EnrichCounties(records []*model.Politician) {
	for _, record := range records {
		if record.Category == model.ChamberCountyAssemblies {
			if record.County == "" && record.Subcategory != "" {
				record.County = record.Subcategory
			}
			continue
		}
		if record.County == "" && record.Constituency != "" {
			if county, ok := constituencyCounty[record.Constituency]; ok {
				record.County = county
			}
		}
	}
}
