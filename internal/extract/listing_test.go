package extract

import (
	"testing"

	"github.com/Kuria-byte/leaders-scraping/internal/model"
)

const listingHTML = `
<html><body>
<div class="mp_card">
  <div class="mp_pic"><img src="/media/photos/jane-doe.jpg"></div>
  <div class="shujaa_details">
    <a href="/person/jane-doe/">Hon. Jane Doe</a>
    <p>Member for Kamukunji Constituency</p>
  </div>
</div>
<div class="mp_card">
  <div class="mp_pic"><img src="/static/images/default-person.jpg"></div>
  <div class="shujaa_details">
    <a href="/person/john-smith/">Mr. John Smith</a>
    <p>Member for Rongo Constituency</p>
  </div>
</div>
<div class="mp_card">
  <div class="shujaa_details">
    <span>No link here</span>
  </div>
</div>
<div class="pagination-container">
  <a class="number_box" href="/parliament/national_assembly/?page=2">2</a>
  <a class="number_box" href="/parliament/national_assembly/?page=3">3</a>
  <a class="number_box" href="/parliament/national_assembly/?page=2">2</a>
</div>
</body></html>`

func TestParseListing(t *testing.T) {
	refs, err := ParseListing(listingHTML, "https://example.com/parliament/national_assembly/", model.ChamberNationalAssembly)
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("expected 2 refs (malformed card skipped), got %d", len(refs))
	}

	first := refs[0]
	if first.Name != "Hon. Jane Doe" {
		t.Errorf("unexpected name: %q", first.Name)
	}
	if first.ProfileURL != "https://example.com/person/jane-doe/" {
		t.Errorf("unexpected profile URL: %q", first.ProfileURL)
	}
	if first.Position != "Member for Kamukunji Constituency" {
		t.Errorf("unexpected position: %q", first.Position)
	}
	if first.Constituency != "Kamukunji" {
		t.Errorf("unexpected constituency: %q", first.Constituency)
	}
	if first.ImageURL != "https://example.com/media/photos/jane-doe.jpg" {
		t.Errorf("unexpected image URL: %q", first.ImageURL)
	}
	if first.Chamber != model.ChamberNationalAssembly {
		t.Errorf("unexpected chamber: %q", first.Chamber)
	}

	// The placeholder photo must not be recorded as an image
	if refs[1].ImageURL != "" {
		t.Errorf("expected default image skipped, got %q", refs[1].ImageURL)
	}
}

func TestParseListing_Empty(t *testing.T) {
	refs, err := ParseListing("<html><body><p>nothing here</p></body></html>",
		"https://example.com/", model.ChamberSenate)
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected no refs, got %d", len(refs))
	}
}

func TestPaginationLinks(t *testing.T) {
	pages, err := PaginationLinks(listingHTML, "https://example.com/parliament/national_assembly/")
	if err != nil {
		t.Fatalf("PaginationLinks failed: %v", err)
	}

	want := []string{
		"https://example.com/parliament/national_assembly/?page=2",
		"https://example.com/parliament/national_assembly/?page=3",
	}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages (duplicates removed), got %d: %v", len(want), len(pages), pages)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d: expected %q, got %q", i, want[i], pages[i])
		}
	}
}

func TestParseCountyIndex(t *testing.T) {
	html := `
<html><body>
<a class="county-assembly-link" href="/county/nairobi/">Nairobi</a>
<a class="county-assembly-link" href="/county/mombasa/">Mombasa</a>
<a class="county-assembly-link">No href</a>
</body></html>`

	counties, err := ParseCountyIndex(html, "https://example.com/parliament/county_assemblies/")
	if err != nil {
		t.Fatalf("ParseCountyIndex failed: %v", err)
	}

	if len(counties) != 2 {
		t.Fatalf("expected 2 counties, got %d", len(counties))
	}
	if counties[0].Name != "Nairobi" || counties[0].URL != "https://example.com/county/nairobi/" {
		t.Errorf("unexpected first county: %+v", counties[0])
	}
	if counties[1].Name != "Mombasa" {
		t.Errorf("unexpected second county: %+v", counties[1])
	}
}
