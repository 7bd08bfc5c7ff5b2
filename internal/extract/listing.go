// Package extract parses mzalendo.com listing and profile pages into
// structured records using fixed selector rules.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Kuria-byte/leaders-scraping/internal/model"
)

// ProfileRef is one politician entry from a listing page, before the
// detail page has been fetched.
type ProfileRef struct {
	Name         string
	Position     string
	Constituency string
	ProfileURL   string
	ImageURL     string
	Chamber      model.Chamber
	County       string // set for county-assembly listings
}

// CountyRef is one county assembly link from the county index page
type CountyRef struct {
	Name string
	URL  string
}

var constituencyPattern = regexp.MustCompile(`Member for ([\w\s\-]+) Constituency`)

// ParseListing extracts politician entries from a chamber listing page.
// Malformed cards are skipped; a page with no recognizable cards yields an
// empty slice, not an error.
func ParseListing(htmlContent string, baseURL string, chamber model.Chamber) ([]ProfileRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var refs []ProfileRef

	doc.Find(".mp_card").Each(func(_ int, card *goquery.Selection) {
		nameLink := card.Find(".shujaa_details a").First()
		href, ok := nameLink.Attr("href")
		if !ok {
			return
		}

		name := strings.TrimSpace(nameLink.Text())
		if name == "" {
			return
		}

		position := "Unknown"
		if p := card.Find(".shujaa_details p").First(); p.Length() > 0 {
			position = strings.TrimSpace(p.Text())
		}

		constituency := ""
		if m := constituencyPattern.FindStringSubmatch(position); m != nil {
			constituency = strings.TrimSpace(m[1])
		}

		imageURL := ""
		if src, ok := card.Find(".mp_pic img").First().Attr("src"); ok {
			resolved := resolveURL(base, src)
			// The site serves a placeholder image for members without photos
			if !strings.HasSuffix(resolved, "default-person.jpg") {
				imageURL = resolved
			}
		}

		refs = append(refs, ProfileRef{
			Name:         name,
			Position:     position,
			Constituency: constituency,
			ProfileURL:   resolveURL(base, href),
			ImageURL:     imageURL,
			Chamber:      chamber,
		})
	})

	return refs, nil
}

// PaginationLinks extracts numbered pagination URLs from a listing page,
// deduplicated and in page order.
func PaginationLinks(htmlContent string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var pages []string
	seen := make(map[string]bool)

	doc.Find(".pagination-container a.number_box").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		pageURL := resolveURL(base, href)
		if pageURL != baseURL && !seen[pageURL] {
			seen[pageURL] = true
			pages = append(pages, pageURL)
		}
	})

	return pages, nil
}

// ParseCountyIndex extracts county assembly links from the county index page
func ParseCountyIndex(htmlContent string, baseURL string) ([]CountyRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var counties []CountyRef

	doc.Find(".county-assembly-link").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return
		}
		counties = append(counties, CountyRef{
			Name: name,
			URL:  resolveURL(base, href),
		})
	})

	return counties, nil
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
