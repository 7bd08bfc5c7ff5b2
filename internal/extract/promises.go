package extract

import "strings"

// promiseCategories maps category names to the keywords that select them.
// Matching is first-hit in this order.
var promiseCategories = []struct {
	name     string
	keywords []string
}{
	{"Education", []string{"education", "school", "university", "college", "student", "learning"}},
	{"Healthcare", []string{"health", "hospital", "medical", "clinic", "doctor", "disease", "treatment"}},
	{"Infrastructure", []string{"road", "bridge", "building", "construction", "infrastructure"}},
	{"Water", []string{"water", "irrigation", "dam", "borehole", "pipeline"}},
	{"Agriculture", []string{"farm", "agriculture", "crop", "livestock", "cattle", "dairy"}},
	{"Economy", []string{"economy", "business", "enterprise", "job", "employment", "income"}},
	{"Security", []string{"security", "police", "crime", "safety"}},
}

// CategorizePromise assigns a thematic category to a promise by keyword
func CategorizePromise(text string) string {
	lower := strings.ToLower(text)

	for _, category := range promiseCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				return category.name
			}
		}
	}

	return "Other"
}
