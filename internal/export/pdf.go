package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/pkg/currency"
)

const (
	pageWidth    = 210.0
	margin       = 20.0
	contentWidth = pageWidth - 2*margin
)

// ItineraryPDF renders a resolved recommendation as an A4 document.
func ItineraryPDF(resp models.RecommendationResponse) ([]byte, error) {
	if len(resp.Recommendations.Destinations) == 0 {
		return nil, fmt.Errorf("itinerary has no destinations")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, 25)
	// core fonts are cp1252, so UTF-8 text is translated on the way in
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8, fmt.Sprintf("Trip plan generated %s  |  page %d", time.Now().UTC().Format("02 Jan 2006"), pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Header
	pdf.SetFillColor(16, 78, 99)
	pdf.Rect(0, 0, pageWidth, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(margin, 8)
	pdf.CellFormat(contentWidth, 10, "Your Trip Plan", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(margin)
	pdf.CellFormat(contentWidth, 6, tr(tripLine(resp.Survey)), "", 1, "L", false, 0, "")
	pdf.SetY(36)
	pdf.SetTextColor(0, 0, 0)

	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFillColor(16, 78, 99)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentWidth, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}
	row := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(45, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.MultiCell(contentWidth-45, 6, tr(value), "", "L", false)
	}
	text := func(s string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(contentWidth, 5, tr(s), "", "L", false)
	}
	bullets := func(items []string) {
		for _, item := range items {
			text("- " + item)
		}
	}

	survey := resp.Survey
	section("Trip Details")
	row("Dates", fmt.Sprintf("%s to %s", readableDate(survey.TravelDates.StartDate), readableDate(survey.TravelDates.EndDate)))
	if survey.TravelDates.IsFlexible {
		row("Flexibility", "Dates are flexible")
	}
	row("Budget", currency.FormatRange(survey.Budget.Min, survey.Budget.Max, survey.Budget.Currency))
	row("Travelers", groupLine(survey.GroupDetails))
	row("Trip type", survey.Preferences.TripType)
	row("Travel style", survey.Preferences.TravelStyle)
	row("Climate", survey.Preferences.Climate)
	row("Activities", strings.Join(survey.Preferences.Activities, ", "))

	for i, dest := range resp.Recommendations.Destinations {
		section(fmt.Sprintf("%d. %s", i+1, dest.Name))
		text(dest.Description)
		pdf.Ln(2)
		row("Activities", strings.Join(dest.Activities, ", "))
		for _, acc := range dest.Accommodation {
			row("Stay", fmt.Sprintf("%s (%s), %s", acc.Name, acc.Type, acc.PriceRange))
		}
		if img, ok := resp.Images[dest.Name]; ok {
			row("Photo", imageCredit(img))
		}
		if w, ok := resp.Weather[dest.Name]; ok && len(w.Forecasts) > 0 {
			forecastTable(pdf, tr, w)
		}
	}

	if len(resp.Recommendations.BestTimeToVisit) > 0 {
		section("Best Time to Visit")
		bullets(resp.Recommendations.BestTimeToVisit)
	}
	if len(resp.Recommendations.TravelTips) > 0 {
		section("Travel Tips")
		bullets(resp.Recommendations.TravelTips)
	}
	if len(resp.Recommendations.CostBreakdown) > 0 {
		section("Estimated Costs")
		for _, item := range resp.Recommendations.CostBreakdown {
			value := item.Cost
			if item.Note != "" {
				value += " (" + item.Note + ")"
			}
			row(item.Category, value)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render itinerary pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func forecastTable(pdf *gofpdf.Fpdf, tr func(string) string, w models.LocationWeather) {
	title := "Forecast"
	if w.IsMock {
		title = "Forecast (estimated)"
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidth, 6, title, "", 1, "L", false, 0, "")

	widths := []float64{35, 35, contentWidth - 70}
	pdf.SetFillColor(235, 242, 245)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range []string{"Date", "Temp (C)", "Conditions"} {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, f := range w.Forecasts {
		pdf.CellFormat(widths[0], 6, f.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.0f - %.0f", f.Temp.Min, f.Temp.Max), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(f.Description), "1", 1, "L", false, 0, "")
	}
}

func tripLine(s models.SurveyInput) string {
	line := fmt.Sprintf("%s to %s", readableDate(s.TravelDates.StartDate), readableDate(s.TravelDates.EndDate))
	if g := groupLine(s.GroupDetails); g != "" {
		line += "  |  " + g
	}
	return line
}

func groupLine(g models.GroupDetails) string {
	if g.Adults == 0 && g.Children == 0 {
		return ""
	}
	line := plural(g.Adults, "adult")
	if g.Children > 0 {
		line += ", " + plural(g.Children, "child")
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if noun == "child" {
		return fmt.Sprintf("%d children", n)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func readableDate(d models.Date) string {
	if d.IsZero() {
		return "TBD"
	}
	return d.Format("02 Jan 2006")
}

func imageCredit(img models.ImageResult) string {
	switch img.Source {
	case models.SourceUnsplash:
		return "Photo by " + img.Attribution.Name + " on Unsplash"
	case models.SourcePixabay:
		return "Image by " + img.Attribution.Name + " from Pixabay"
	default:
		return "Stock photo"
	}
}
