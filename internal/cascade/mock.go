package cascade

import (
	"time"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

const (
	MockDestinationName = "Sample Destination"
	MockCountry         = "Sample Country"
	MockDescription     = "Partly cloudy"
	MockIcon            = "https://cdn.weatherapi.com/weather/64x64/day/116.png"
	MockTempMin         = 15
	MockTempMax         = 25
)

// MockBundle is the fixed recommendation set served whenever live text
// generation is unavailable.
func MockBundle() models.Bundle {
	return models.Bundle{
		Destinations: []models.Destination{
			{
				Name:        MockDestinationName,
				Description: "A beautiful destination perfect for your preferences.",
				ImageQuery:  "scenic landscape destination",
				Activities:  []string{"Sightseeing", "Local cuisine", "Cultural tours"},
				Accommodation: []models.Accommodation{
					{
						Name:       "Comfort Hotel",
						Type:       "4-star hotel",
						PriceRange: "$200-300 per night",
					},
				},
			},
		},
		BestTimeToVisit: []string{
			"Spring (March to May) offers mild weather",
			"Autumn (September to November) has fewer tourists",
		},
		TravelTips: []string{
			"Book accommodations in advance",
			"Consider local transportation options",
			"Research local customs and etiquette",
		},
		CostBreakdown: []models.CostItem{
			{Category: "Accommodation", Cost: "40% of budget", Note: "Based on selected hotel type"},
			{Category: "Activities", Cost: "30% of budget", Note: "Including guided tours and attractions"},
			{Category: "Transportation", Cost: "20% of budget", Note: "Local transport and transfers"},
			{Category: "Miscellaneous", Cost: "10% of budget", Note: "Food, souvenirs, and contingency"},
		},
	}
}

func mockForecast(date time.Time) models.Forecast {
	return models.Forecast{
		Date: date.Format(models.DateLayout),
		Temp: models.TempRange{
			Min: MockTempMin,
			Max: MockTempMax,
		},
		Description: MockDescription,
		Icon:        MockIcon,
	}
}

// MockWeather returns one placeholder forecast per day starting at start.
func MockWeather(city string, start time.Time, days int) models.LocationWeather {
	forecasts := make([]models.Forecast, 0, max(days, 0))
	for i := 0; i < days; i++ {
		forecasts = append(forecasts, mockForecast(start.AddDate(0, 0, i)))
	}
	return models.LocationWeather{
		City:      city,
		Country:   MockCountry,
		Forecasts: forecasts,
		IsMock:    true,
	}
}
