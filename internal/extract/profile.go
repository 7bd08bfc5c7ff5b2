package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Kuria-byte/leaders-scraping/internal/model"
)

// fieldRule extracts one named field from a parsed profile page. Rules are
// independent: each reports whether it found anything, and a rule that finds
// nothing leaves the record's field at its zero value. One malformed section
// never aborts record construction.
type fieldRule struct {
	name    string
	extract func(doc *goquery.Document, p *model.Politician) bool
}

var profileRules = []fieldRule{
	{"party", extractParty},
	{"county", extractCounty},
	{"election", extractElection},
	{"contact", extractContact},
	{"education", extractEducation},
	{"positions", extractPositions},
	{"promises", extractPromises},
	{"attendance", extractAttendance},
	{"committees", extractCommittees},
}

var (
	partyPattern = regexp.MustCompile(`Member of ([\w\s\-]+)`)
	digitPattern = regexp.MustCompile(`\d+`)
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// ParseProfile parses a politician's detail page, merging the extracted
// fields into the listing data carried by ref. It returns the record and the
// names of expected fields the page did not contain.
func ParseProfile(htmlContent string, ref ProfileRef) (*model.Politician, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, nil, fmt.Errorf("parse profile HTML: %w", err)
	}

	p := &model.Politician{
		ID:           model.IDFromProfileURL(ref.ProfileURL, ref.Name),
		Name:         ref.Name,
		Position:     ref.Position,
		Constituency: ref.Constituency,
		Category:     ref.Chamber,
		Subcategory:  ref.County,
		ProfileURL:   ref.ProfileURL,
		ImageURL:     ref.ImageURL,
	}

	var missing []string
	for _, rule := range profileRules {
		if !rule.extract(doc, p) {
			missing = append(missing, rule.name)
		}
	}

	deriveFields(p)

	return p, missing, nil
}

func extractParty(doc *goquery.Document, p *model.Politician) bool {
	text := strings.TrimSpace(doc.Find(".person-party-membership").First().Text())
	if m := partyPattern.FindStringSubmatch(text); m != nil {
		p.Party = strings.TrimSpace(m[1])
		return true
	}
	return false
}

func extractCounty(doc *goquery.Document, p *model.Politician) bool {
	text := strings.TrimSpace(doc.Find(".location a").First().Text())
	if strings.Contains(text, "County") {
		p.County = strings.TrimSpace(strings.ReplaceAll(text, "County", ""))
		return true
	}
	return false
}

func extractElection(doc *goquery.Document, p *model.Politician) bool {
	section := doc.Find(".election-results").First()
	if section.Length() == 0 {
		return false
	}

	var election model.Election
	if date := strings.TrimSpace(section.Find(".date").First().Text()); date != "" {
		election.ElectedDate = date
	}
	if votes := section.Find(".votes").First().Text(); votes != "" {
		if m := digitPattern.FindString(votes); m != "" {
			election.TotalVotes, _ = strconv.Atoi(m)
		}
	}

	if election == (model.Election{}) {
		return false
	}
	p.Election = &election
	return true
}

func extractContact(doc *goquery.Document, p *model.Politician) bool {
	section := firstOf(doc, "#contact", ".contact-details")
	if section.Length() == 0 {
		return false
	}

	var contact model.Contact

	if href, ok := section.Find(`a[href^="mailto:"]`).First().Attr("href"); ok {
		contact.Email = strings.TrimSpace(strings.TrimPrefix(href, "mailto:"))
	}

	section.Find(`a[href^="tel:"]`).Each(func(_ int, link *goquery.Selection) {
		if href, ok := link.Attr("href"); ok {
			contact.Phone = append(contact.Phone, strings.TrimSpace(strings.TrimPrefix(href, "tel:")))
		}
	})

	if office := strings.TrimSpace(section.Find(".address").First().Text()); office != "" {
		contact.Office = office
	}

	var social model.SocialMedia
	if href, ok := section.Find(`a[href*="twitter.com"]`).First().Attr("href"); ok {
		social.Twitter = strings.TrimSpace(href)
	}
	if href, ok := section.Find(`a[href*="facebook.com"]`).First().Attr("href"); ok {
		social.Facebook = strings.TrimSpace(href)
	}
	if social != (model.SocialMedia{}) {
		contact.SocialMedia = &social
	}

	if contact.Email == "" && len(contact.Phone) == 0 && contact.Office == "" && contact.SocialMedia == nil {
		return false
	}
	p.Contact = &contact
	return true
}

func experienceSection(doc *goquery.Document) *goquery.Selection {
	return firstOf(doc, "#experience", ".person-detail-experience")
}

func extractEducation(doc *goquery.Document, p *model.Politician) bool {
	section := experienceSection(doc)
	if section.Length() == 0 {
		return false
	}

	entries := section.Find(".education-entry")
	if entries.Length() == 0 {
		entries = section.Find(".education")
	}

	entries.Each(func(_ int, entry *goquery.Selection) {
		qualification := entry.Find(".qualification").First()
		text := ""
		if qualification.Length() > 0 {
			text = strings.TrimSpace(qualification.Text())
		} else {
			text = strings.TrimSpace(entry.Text())
		}
		// Entries shorter than this are stray markup, not qualifications
		if len(text) > 5 {
			p.Education = append(p.Education, text)
		}
	})

	return len(p.Education) > 0
}

func extractPositions(doc *goquery.Document, p *model.Politician) bool {
	section := experienceSection(doc)
	if section.Length() == 0 {
		return false
	}

	entries := section.Find(".position-entry")
	if entries.Length() == 0 {
		entries = section.Find(".position")
	}

	entries.Each(func(_ int, entry *goquery.Selection) {
		title := ""
		if t := entry.Find(".position-title").First(); t.Length() > 0 {
			title = strings.TrimSpace(t.Text())
		} else {
			title = strings.TrimSpace(entry.Text())
		}
		if title == "" {
			return
		}

		position := model.Position{Title: title}
		if org := strings.TrimSpace(entry.Find(".position-org").First().Text()); org != "" {
			position.Organization = org
		}
		if date := strings.TrimSpace(firstOfSel(entry, ".position-date", ".date").Text()); date != "" {
			position.Date = date
		}

		p.Positions = append(p.Positions, position)
	})

	return len(p.Positions) > 0
}

func extractPromises(doc *goquery.Document, p *model.Politician) bool {
	statements := doc.Find("#statements .statement")
	if statements.Length() == 0 {
		statements = doc.Find(".statement")
	}

	statements.Each(func(_ int, statement *goquery.Selection) {
		text := strings.TrimSpace(firstOfSel(statement, ".statement-text", ".text").Text())
		if text == "" {
			return
		}

		promise := model.Promise{
			ID:          fmt.Sprintf("pr%d", len(p.Promises)+1),
			Description: text,
			Category:    CategorizePromise(text),
			Status:      "in-progress",
		}

		if date := strings.TrimSpace(firstOfSel(statement, ".statement-date", ".date").Text()); date != "" {
			promise.MadeDate = date
			if isoDate.MatchString(date) {
				promise.DueDate = dueDateFrom(date)
			}
		}

		p.Promises = append(p.Promises, promise)
	})

	return len(p.Promises) > 0
}

// dueDateFrom projects a due date three years after the made date
func dueDateFrom(madeDate string) string {
	parts := strings.SplitN(madeDate[:10], "-", 3)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d-%s-%s", year+3, parts[1], parts[2])
}

func extractAttendance(doc *goquery.Document, p *model.Politician) bool {
	section := firstOf(doc, "#attendance", ".attendance")
	if section.Length() == 0 {
		return false
	}

	entries := section.Find(".attendance-record")
	if entries.Length() == 0 {
		entries = section.Find("table tr")
	}

	entries.Each(func(_ int, entry *goquery.Selection) {
		if entry.Find("th").Length() > 0 {
			return // header row
		}

		period := strings.TrimSpace(firstOfSel(entry, ".period", "td:nth-child(1)").Text())
		if period == "" {
			return
		}

		record := model.AttendanceRecord{Period: period}
		hasPresent := false
		hasAbsent := false

		if m := digitPattern.FindString(firstOfSel(entry, ".present", "td:nth-child(2)").Text()); m != "" {
			record.Present, _ = strconv.Atoi(m)
			hasPresent = true
		}
		if m := digitPattern.FindString(firstOfSel(entry, ".absent", "td:nth-child(3)").Text()); m != "" {
			record.Absent, _ = strconv.Atoi(m)
			hasAbsent = true
		}
		if hasPresent && hasAbsent {
			record.Total = record.Present + record.Absent
		}

		p.Attendance = append(p.Attendance, record)
	})

	return len(p.Attendance) > 0
}

func extractCommittees(doc *goquery.Document, p *model.Politician) bool {
	section := firstOf(doc, "#committees", ".committees")
	if section.Length() == 0 {
		return false
	}

	entries := section.Find(".committee")
	if entries.Length() == 0 {
		entries = section.Find("li")
	}

	entries.Each(func(_ int, entry *goquery.Selection) {
		if text := strings.TrimSpace(entry.Text()); text != "" {
			p.Committees = append(p.Committees, text)
		}
	})

	return len(p.Committees) > 0
}

// deriveFields computes fields that are not on the page itself: an approval
// rating from attendance ratios and key achievements from promises.
func deriveFields(p *model.Politician) {
	if len(p.Attendance) > 0 {
		totalPresent := 0
		totalSessions := 0
		for _, record := range p.Attendance {
			totalPresent += record.Present
			totalSessions += record.Total
		}
		if totalSessions > 0 {
			rating := float64(totalPresent) / float64(totalSessions) * 5
			p.ApprovalRating = math.Round(rating*10) / 10
		}
	}

	if len(p.Promises) > 0 {
		limit := len(p.Promises)
		if limit > 5 {
			limit = 5
		}
		for _, promise := range p.Promises[:limit] {
			p.KeyAchievements = append(p.KeyAchievements, promise.Description)
		}
	}
}

func firstOf(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find(selectors[len(selectors)-1])
}

func firstOfSel(root *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := root.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return root.Find(selectors[len(selectors)-1])
}
