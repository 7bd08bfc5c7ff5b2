package model

import (
	"net/url"
	"regexp"
	"strings"
)

// Chamber identifies one of the three scraping categories on the source site.
// The values double as output subdirectory names.
type Chamber string

const (
	ChamberNationalAssembly Chamber = "national_assembly"
	ChamberSenate           Chamber = "senate"
	ChamberCountyAssemblies Chamber = "county_assemblies"
)

// Chambers lists all chambers in scrape order.
func Chambers() []Chamber {
	return []Chamber{ChamberNationalAssembly, ChamberSenate, ChamberCountyAssemblies}
}

// Politician is one scraped leader record. It is built once by the profile
// parser and immutable afterwards; the aggregator only reads it.
type Politician struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Position     string  `json:"position"`
	Constituency string  `json:"constituency,omitempty"`
	County       string  `json:"county,omitempty"`
	Category     Chamber `json:"category"`
	Subcategory  string  `json:"subcategory,omitempty"` // county name for county assemblies
	Party        string  `json:"party,omitempty"`
	ProfileURL   string  `json:"profile_url"`
	ImageURL     string  `json:"image_url,omitempty"`

	Election *Election `json:"election,omitempty"`
	Contact  *Contact  `json:"contact,omitempty"`

	Education  []string           `json:"education,omitempty"`
	Positions  []Position         `json:"positions,omitempty"`
	Promises   []Promise          `json:"promises,omitempty"`
	Attendance []AttendanceRecord `json:"attendance,omitempty"`
	Committees []string           `json:"committees,omitempty"`

	// Derived fields
	ApprovalRating  float64  `json:"approvalRating,omitempty"`
	KeyAchievements []string `json:"keyAchievements,omitempty"`
}

// Election holds electoral data from the profile page.
type Election struct {
	ElectedDate string `json:"electedDate,omitempty"`
	TotalVotes  int    `json:"totalVotes,omitempty"`
}

// Contact holds contact channels from the profile page.
type Contact struct {
	Email       string       `json:"email,omitempty"`
	Phone       []string     `json:"phone,omitempty"`
	Office      string       `json:"office,omitempty"`
	SocialMedia *SocialMedia `json:"socialMedia,omitempty"`
}

// SocialMedia holds social profile links.
type SocialMedia struct {
	Twitter  string `json:"twitter,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// Position is one entry of a leader's political history.
type Position struct {
	Title        string `json:"title"`
	Organization string `json:"organization,omitempty"`
	Date         string `json:"date,omitempty"`
}

// Promise is a public statement or pledge extracted from the profile.
type Promise struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MadeDate    string `json:"madeDate,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Status      string `json:"status"`
}

// AttendanceRecord is one row of a leader's session attendance table.
type AttendanceRecord struct {
	Period  string `json:"period"`
	Present int    `json:"present,omitempty"`
	Absent  int    `json:"absent,omitempty"`
	Total   int    `json:"total,omitempty"`
}

var unsafeIDChars = regexp.MustCompile(`[^\w\-]`)

// IDFromProfileURL derives a stable record identifier from the last path
// segment of a profile URL, falling back to a slug of the name.
func IDFromProfileURL(profileURL, name string) string {
	if parsed, err := url.Parse(profileURL); err == nil {
		path := strings.Trim(parsed.Path, "/")
		if path != "" {
			segments := strings.Split(path, "/")
			if id := SanitizeID(segments[len(segments)-1]); id != "" {
				return id
			}
		}
	}
	return SanitizeID(strings.ReplaceAll(strings.ToLower(name), " ", "-"))
}

// SanitizeID strips characters unsafe for use in filenames.
func SanitizeID(id string) string {
	return unsafeIDChars.ReplaceAllString(id, "")
}
