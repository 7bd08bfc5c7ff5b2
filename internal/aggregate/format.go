package aggregate

import (
	"strings"

	"github.com/Kuria-byte/leaders-scraping/internal/model"
)

// FormattedLeader is the alternate output schema, matching the external
// example dataset the project was asked to conform to: camelCase keys,
// election data flattened to the top level, contact reduced to
// email/office/social media. It carries the same data as the standard
// schema, only shaped differently.
type FormattedLeader struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Position        string                   `json:"position"`
	County          string                   `json:"county"`
	Party           string                   `json:"party"`
	ImageURL        string                   `json:"imageUrl"`
	ElectedDate     string                   `json:"electedDate,omitempty"`
	ApprovalRating  float64                  `json:"approvalRating,omitempty"`
	TotalVotes      int                      `json:"totalVotes,omitempty"`
	Contact         *FormattedContact        `json:"contact,omitempty"`
	Education       []string                 `json:"education,omitempty"`
	Promises        []model.Promise          `json:"promises,omitempty"`
	Attendance      []model.AttendanceRecord `json:"attendance,omitempty"`
	KeyAchievements []string                 `json:"keyAchievements,omitempty"`
}

// FormattedContact is the reduced contact shape of the alternate schema
type FormattedContact struct {
	Email       string             `json:"email"`
	Office      string             `json:"office"`
	SocialMedia *model.SocialMedia `json:"socialMedia,omitempty"`
}

// FormatLeaders converts records to the alternate schema
func FormatLeaders(records []*model.Politician) []FormattedLeader {
	formatted := make([]FormattedLeader, 0, len(records))

	for _, leader := range records {
		out := FormattedLeader{
			ID:              strings.ReplaceAll(strings.ToLower(leader.ID), " ", "-"),
			Name:            leader.Name,
			Position:        leader.Position,
			County:          leader.County,
			Party:           leader.Party,
			ImageURL:        leader.ImageURL,
			ApprovalRating:  leader.ApprovalRating,
			Education:       leader.Education,
			Promises:        leader.Promises,
			Attendance:      leader.Attendance,
			KeyAchievements: leader.KeyAchievements,
		}

		if leader.Election != nil {
			out.ElectedDate = leader.Election.ElectedDate
			out.TotalVotes = leader.Election.TotalVotes
		}

		if leader.Contact != nil {
			out.Contact = &FormattedContact{
				Email:       leader.Contact.Email,
				Office:      leader.Contact.Office,
				SocialMedia: leader.Contact.SocialMedia,
			}
		}

		formatted = append(formatted, out)
	}

	return formatted
}
