package cascade

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/pkg/currency"
)

const readableDate = "January 2, 2006"

const bundleSchema = `{
  "destinations": [
    {
      "name": "Destination Name",
      "description": "Brief engaging description",
      "imageQuery": "Search query to find a representative image",
      "activities": ["Activity 1", "Activity 2"],
      "accommodation": [
        {
          "name": "Hotel/Resort Name",
          "type": "Type of accommodation",
          "priceRange": "Price per night"
        }
      ]
    }
  ],
  "bestTimeToVisit": ["Tip 1", "Tip 2"],
  "travelTips": ["Tip 1", "Tip 2"],
  "costBreakdown": [
    {
      "category": "Category name",
      "cost": "Estimated cost",
      "note": "Optional note"
    }
  ]
}`

// BuildPrompt renders every survey field into the instruction sent to the
// text generator.
func BuildPrompt(s models.SurveyInput) string {
	var b strings.Builder

	b.WriteString("As a travel expert, provide personalized travel recommendations based on the following preferences. ")
	b.WriteString("Return the response in a structured format that can be parsed as JSON.\n\n")

	fmt.Fprintf(&b, "Travel Dates: %s to %s\n",
		s.TravelDates.StartDate.Format(readableDate), s.TravelDates.EndDate.Format(readableDate))
	if s.TravelDates.IsFlexible {
		b.WriteString("(Dates are flexible)\n")
	}

	fmt.Fprintf(&b, "\nBudget: %s\n", currency.FormatRange(s.Budget.Min, s.Budget.Max, s.Budget.Currency))

	b.WriteString("\nGroup Details:\n")
	fmt.Fprintf(&b, "- %d Adults\n", s.GroupDetails.Adults)
	fmt.Fprintf(&b, "- %d Children\n", s.GroupDetails.Children)
	fmt.Fprintf(&b, "- Trip Type: %s\n", orUnspecified(s.Preferences.TripType))
	if len(s.Preferences.AgeGroups) > 0 {
		fmt.Fprintf(&b, "- Age Groups: %s\n", strings.Join(s.Preferences.AgeGroups, ", "))
	}

	b.WriteString("\nPreferences:\n")
	fmt.Fprintf(&b, "- Travel Style: %s\n", orUnspecified(s.Preferences.TravelStyle))
	fmt.Fprintf(&b, "- Climate: %s\n", orUnspecified(s.Preferences.Climate))
	fmt.Fprintf(&b, "- Activities: %s\n", orUnspecified(strings.Join(s.Preferences.Activities, ", ")))
	fmt.Fprintf(&b, "- Accommodation: %s\n", orUnspecified(strings.Join(s.Preferences.Accommodation, ", ")))
	fmt.Fprintf(&b, "- Transportation: %s\n", orUnspecified(strings.Join(s.Preferences.Transportation, ", ")))

	b.WriteString("\nFormat the response as a JSON object with the following structure:\n")
	b.WriteString(bundleSchema)
	b.WriteString("\n\nEnsure all recommendations fit within the specified budget")
	if s.GroupDetails.Children > 0 {
		b.WriteString(" and include family-friendly options, since children are part of the group")
	}
	b.WriteString(".\nKeep descriptions engaging and informative.\n")
	b.WriteString("Include specific accommodation options within the budget range.\n")
	b.WriteString("Provide practical travel tips relevant to the group composition.")

	return b.String()
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
