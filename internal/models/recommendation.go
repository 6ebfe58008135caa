package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Accommodation struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PriceRange string `json:"priceRange"`
}

type Destination struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	ImageQuery    string          `json:"imageQuery"`
	Activities    []string        `json:"activities"`
	Accommodation []Accommodation `json:"accommodation"`
}

// SearchQuery is the text used to look up a photo for the destination.
func (d Destination) SearchQuery() string {
	if q := strings.TrimSpace(d.ImageQuery); q != "" {
		return q
	}
	return d.Name
}

type CostItem struct {
	Category string `json:"category"`
	Cost     string `json:"cost"`
	Note     string `json:"note,omitempty"`
}

// UnmarshalJSON accepts cost as a string or a bare number; generated
// bundles use both.
func (c *CostItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		Category string          `json:"category"`
		Cost     json.RawMessage `json:"cost"`
		Note     string          `json:"note"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	cost := bytes.TrimSpace(raw.Cost)
	switch {
	case len(cost) == 0 || bytes.Equal(cost, []byte("null")):
		c.Cost = ""
	case cost[0] == '"':
		if err := json.Unmarshal(cost, &c.Cost); err != nil {
			return err
		}
	default:
		var n json.Number
		if err := json.Unmarshal(cost, &n); err != nil {
			return fmt.Errorf("costBreakdown.cost must be a string or number: %w", err)
		}
		c.Cost = n.String()
	}

	c.Category = raw.Category
	c.Note = raw.Note
	return nil
}

// Bundle is the recommendation set produced for one survey submission.
// Destination names are unique within a bundle.
type Bundle struct {
	Destinations    []Destination `json:"destinations"`
	BestTimeToVisit []string      `json:"bestTimeToVisit"`
	TravelTips      []string      `json:"travelTips"`
	CostBreakdown   []CostItem    `json:"costBreakdown"`
}
