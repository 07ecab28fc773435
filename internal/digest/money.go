package digest

import (
	"fmt"
	"math"
)

// FormatMoney renders a peso amount rounded half-up to centavos.
// Missing prices render as "N/A".
func FormatMoney(amount *float64) string {
	if amount == nil {
		return "N/A"
	}
	rounded := math.Floor(*amount*100+0.5) / 100
	return fmt.Sprintf("PHP %.2f", rounded)
}
