package cascade_test

import (
	"testing"

	"github.com/dharmasatrya/tripplanner/internal/cascade"
	"github.com/dharmasatrya/tripplanner/internal/models"
)

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		query string
		want  cascade.Category
	}{
		{"Maldives Beach Resort", cascade.CategoryBeach},
		{"Mountain lodge", cascade.CategoryMountain},
		{"historic old town", cascade.CategoryHistorical},
		{"local culture festival", cascade.CategoryCultural},
		{"adventure trek", cascade.CategoryAdventure},
		{"New York City", cascade.CategoryUrban},
		{"nature reserve", cascade.CategoryNature},
		{"Sample Destination", cascade.CategoryCity},
		{"beach city", cascade.CategoryBeach},
		{"", cascade.CategoryCity},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := cascade.ClassifyQuery(tt.query); got != tt.want {
				t.Errorf("ClassifyQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestDefaultImage_Idempotent(t *testing.T) {
	for _, q := range []string{"Cape Town beach", "Machu Picchu historic", "Tokyo"} {
		a, b := cascade.DefaultImage(q), cascade.DefaultImage(q)
		if a != b {
			t.Errorf("DefaultImage(%q) not stable: %+v vs %+v", q, a, b)
		}
		if a.Source != models.SourceDefault || a.URL == "" {
			t.Errorf("DefaultImage(%q) = %+v", q, a)
		}
		if a.Attribution.Name != "Default Image" || a.Attribution.Link != "https://unsplash.com" {
			t.Errorf("unexpected attribution %+v", a.Attribution)
		}
	}
}

func TestDefaultImage_DistinctBuckets(t *testing.T) {
	if cascade.DefaultImage("beach").URL == cascade.DefaultImage("mountain").URL {
		t.Error("beach and mountain should map to different stock photos")
	}
	if cascade.DefaultImage("city").URL == cascade.DefaultImage("somewhere").URL {
		t.Error("'city' keyword maps to the urban photo, not the fallback city photo")
	}
}
