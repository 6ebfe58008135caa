package currency

import (
	"fmt"
	"math"
	"strings"
)

// Format renders a whole-unit amount as "USD 1,500". An empty code yields the
// bare number.
func Format(amount float64, code string) string {
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intStr := fmt.Sprintf("%.0f", rounded)
	formatted := addThousandsSeparator(intStr, ",")

	code = strings.ToUpper(strings.TrimSpace(code))
	result := formatted
	if code != "" {
		result = code + " " + formatted
	}
	if negative {
		result = "-" + result
	}

	return result
}

// FormatRange renders a budget range such as "USD 1,000 - 5,000".
func FormatRange(min, max float64, code string) string {
	return Format(min, code) + " - " + Format(max, "")
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
