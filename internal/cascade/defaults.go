package cascade

import (
	"strings"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type Category string

const (
	CategoryBeach      Category = "beach"
	CategoryMountain   Category = "mountain"
	CategoryHistorical Category = "historical"
	CategoryCultural   Category = "cultural"
	CategoryAdventure  Category = "adventure"
	CategoryUrban      Category = "urban"
	CategoryNature     Category = "nature"
	CategoryCity       Category = "city"
)

// Keyword order matters: the first match wins.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"beach", CategoryBeach},
	{"mountain", CategoryMountain},
	{"historic", CategoryHistorical},
	{"culture", CategoryCultural},
	{"adventure", CategoryAdventure},
	{"city", CategoryUrban},
	{"nature", CategoryNature},
}

var defaultImages = map[Category]string{
	CategoryBeach:      "https://images.unsplash.com/photo-1507525428034-b723cf961d3e",
	CategoryMountain:   "https://images.unsplash.com/photo-1464822759023-fed622ff2c3b",
	CategoryCity:       "https://images.unsplash.com/photo-1514924013411-cbf25faa35bb",
	CategoryNature:     "https://images.unsplash.com/photo-1472214103451-9374bd1c798e",
	CategoryCultural:   "https://images.unsplash.com/photo-1552832230-c0197dd311b5",
	CategoryHistorical: "https://images.unsplash.com/photo-1558998708-ed5f9da0f17a",
	CategoryAdventure:  "https://images.unsplash.com/photo-1516939884455-1445c8652f83",
	CategoryUrban:      "https://images.unsplash.com/photo-1477959858617-67f85cf4f1df",
}

func ClassifyQuery(query string) Category {
	q := strings.ToLower(query)
	for _, kc := range categoryKeywords {
		if strings.Contains(q, kc.keyword) {
			return kc.category
		}
	}
	return CategoryCity
}

// DefaultImage is the last-resort stock photo for query.
func DefaultImage(query string) models.ImageResult {
	return models.ImageResult{
		URL: defaultImages[ClassifyQuery(query)],
		Attribution: models.Attribution{
			Name: "Default Image",
			Link: "https://unsplash.com",
		},
		Source: models.SourceDefault,
	}
}
