package models

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// MaxTripDays bounds the span of a trip and of any forecast built for it.
const MaxTripDays = 366

// Date is a calendar day. It marshals as YYYY-MM-DD and also accepts RFC 3339.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return ErrInvalidDate
	}
	*d = parsed
	return nil
}

type TravelDates struct {
	StartDate  Date `json:"startDate"`
	EndDate    Date `json:"endDate"`
	IsFlexible bool `json:"isFlexible"`
}

type Budget struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type Preferences struct {
	Activities     []string `json:"activities"`
	Accommodation  []string `json:"accommodation"`
	Transportation []string `json:"transportation"`
	Climate        string   `json:"climate,omitempty"`
	TravelStyle    string   `json:"travelStyle,omitempty"`
	TripType       string   `json:"tripType,omitempty"`
	AgeGroups      []string `json:"ageGroups,omitempty"`
}

type GroupDetails struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// SurveyInput is the completed travel survey. Treat it as immutable once validated.
type SurveyInput struct {
	TravelDates  TravelDates  `json:"travelDates"`
	Budget       Budget       `json:"budget"`
	Preferences  Preferences  `json:"preferences"`
	GroupDetails GroupDetails `json:"groupDetails"`
}

var (
	climates     = []string{"tropical", "mediterranean", "temperate", "cold"}
	travelStyles = []string{"budget", "luxury", "adventure", "balanced"}
	tripTypes    = []string{"family", "friends", "couple", "solo", "business", "group"}
)

func (s *SurveyInput) Validate() error {
	if s.TravelDates.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if s.TravelDates.EndDate.IsZero() {
		return ErrMissingEndDate
	}
	if err := ValidateRange(s.TravelDates.StartDate, s.TravelDates.EndDate); err != nil {
		return err
	}

	if s.Budget.Min < 0 || s.Budget.Max < 0 {
		return ErrNegativeBudget
	}
	if s.Budget.Max < s.Budget.Min {
		return ErrBudgetRange
	}
	s.Budget.Currency = strings.ToUpper(strings.TrimSpace(s.Budget.Currency))
	if s.Budget.Currency == "" {
		return ErrMissingCurrency
	}

	if s.GroupDetails.Adults < 1 {
		return ErrNoAdults
	}
	if s.GroupDetails.Children < 0 {
		return ErrNegativeChildren
	}

	p := &s.Preferences
	p.Climate = strings.ToLower(strings.TrimSpace(p.Climate))
	p.TravelStyle = strings.ToLower(strings.TrimSpace(p.TravelStyle))
	p.TripType = strings.ToLower(strings.TrimSpace(p.TripType))
	if p.Climate != "" && !oneOf(p.Climate, climates) {
		return ErrUnknownClimate
	}
	if p.TravelStyle != "" && !oneOf(p.TravelStyle, travelStyles) {
		return ErrUnknownTravelStyle
	}
	if p.TripType != "" && !oneOf(p.TripType, tripTypes) {
		return ErrUnknownTripType
	}
	return nil
}

// ValidateRange checks an already parsed trip range.
func ValidateRange(start, end Date) error {
	if end.Before(start.Time) {
		return ErrEndBeforeStart
	}
	if end.Sub(start.Time) > MaxTripDays*24*time.Hour {
		return ErrTripTooLong
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrInvalidDate        ValidationError = "dates must be YYYY-MM-DD or RFC 3339"
	ErrMissingStartDate   ValidationError = "travelDates.startDate is required"
	ErrMissingEndDate     ValidationError = "travelDates.endDate is required"
	ErrEndBeforeStart     ValidationError = "travelDates.endDate must not be before startDate"
	ErrTripTooLong        ValidationError = "travelDates must span at most 366 days"
	ErrNegativeBudget     ValidationError = "budget.min and budget.max must be >= 0"
	ErrBudgetRange        ValidationError = "budget.max must be >= budget.min"
	ErrMissingCurrency    ValidationError = "budget.currency is required"
	ErrNoAdults           ValidationError = "groupDetails.adults must be at least 1"
	ErrNegativeChildren   ValidationError = "groupDetails.children must be >= 0"
	ErrUnknownClimate     ValidationError = "preferences.climate must be one of tropical, mediterranean, temperate, cold"
	ErrUnknownTravelStyle ValidationError = "preferences.travelStyle must be one of budget, luxury, adventure, balanced"
	ErrUnknownTripType    ValidationError = "preferences.tripType must be one of family, friends, couple, solo, business, group"
)
