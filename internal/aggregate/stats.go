package aggregate

import (
	"math"
	"strings"

	"github.com/Kuria-byte/leaders-scraping/internal/model"
	"github.com/Kuria-byte/leaders-scraping/internal/pipeline"
)

// Statistics is the run summary document written to statistics.json.
// Errors and MissingFields account for every outcome that did not produce a
// complete record, so nothing is dropped silently.
type Statistics struct {
	TotalLeaders       int            `json:"total_leaders"`
	ByCategory         map[string]int `json:"by_category"`
	ByParty            map[string]int `json:"by_party"`
	ByGender           map[string]int `json:"by_gender"`
	EducationLevels    map[string]int `json:"education_levels"`
	AttendanceAverage  float64        `json:"attendance_average"`
	ProjectsTotal      int            `json:"projects_total"`
	PromisesByCategory map[string]int `json:"promises_by_category"`
	Errors             int            `json:"errors"`
	MissingFields      map[string]int `json:"missing_fields"`
}

// Compute builds run statistics from all outcomes
func Compute(outcomes []pipeline.Outcome) *Statistics {
	stats := &Statistics{
		ByCategory:         make(map[string]int),
		ByParty:            make(map[string]int),
		ByGender:           map[string]int{"male": 0, "female": 0, "unknown": 0},
		EducationLevels:    make(map[string]int),
		PromisesByCategory: make(map[string]int),
		MissingFields:      make(map[string]int),
	}

	totalAttendance := 0.0
	leadersWithAttendance := 0

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			stats.Errors++
			continue
		}

		for _, field := range outcome.Missing {
			stats.MissingFields[field]++
		}

		leader := outcome.Record
		if leader == nil {
			continue
		}

		stats.TotalLeaders++
		stats.ByCategory[string(leader.Category)]++

		party := leader.Party
		if party == "" {
			party = "unknown"
		}
		stats.ByParty[party]++

		stats.ByGender[estimateGender(leader)]++

		for _, education := range leader.Education {
			stats.EducationLevels[degreeType(education)]++
		}

		if len(leader.Attendance) > 0 {
			leaderAttendance := 0.0
			sessions := 0
			for _, record := range leader.Attendance {
				if record.Total > 0 {
					leaderAttendance += float64(record.Present) / float64(record.Total)
					sessions++
				}
			}
			if sessions > 0 {
				totalAttendance += (leaderAttendance / float64(sessions)) * 100
				leadersWithAttendance++
			}
		}

		for _, promise := range leader.Promises {
			category := promise.Category
			if category == "" {
				category = "Other"
			}
			stats.PromisesByCategory[category]++
		}
	}

	if leadersWithAttendance > 0 {
		average := totalAttendance / float64(leadersWithAttendance)
		stats.AttendanceAverage = math.Round(average*100) / 100
	}

	return stats
}

// estimateGender guesses gender from honorifics. Rough, but the source site
// publishes no gender field.
func estimateGender(leader *model.Politician) string {
	name := leader.Name
	if strings.HasPrefix(name, "Ms.") || strings.HasPrefix(name, "Mrs.") ||
		strings.Contains(strings.ToLower(leader.Position), "women") {
		return "female"
	}
	if strings.HasPrefix(name, "Mr.") || strings.HasPrefix(name, "Hon.") {
		return "male"
	}
	return "unknown"
}

func degreeType(education string) string {
	lower := strings.ToLower(education)
	switch {
	case strings.Contains(lower, "phd") || strings.Contains(lower, "doctorate"):
		return "PhD"
	case strings.Contains(lower, "master"):
		return "Masters"
	case strings.Contains(lower, "bachelor") || strings.Contains(lower, "degree"):
		return "Bachelors"
	case strings.Contains(lower, "diploma"):
		return "Diploma"
	case strings.Contains(lower, "certificate"):
		return "Certificate"
	default:
		return "unknown"
	}
}
