package scheduler

import (
	"math"
	"strconv"

	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
)

// Decision is the outcome of evaluating one alert against one row.
type Decision struct {
	Fired  bool
	Reason string
}

// triggerRules is evaluated in order; the first rule that fires wins.
// The order is part of the contract: an alert matching several rules
// always reports the reason of the earliest one.
var triggerRules = []func(*alertdomain.Alert, *float64, *float64) (bool, string){
	desiredPriceRule,
	desiredPercentRule,
	onSaleRule,
}

// evaluate is a pure function: identical inputs always produce the
// same decision and nothing is mutated.
func evaluate(alert *alertdomain.Alert, row warehousedomain.ScrapedProduct) Decision {
	sale := row.PriceSale
	if sale == nil {
		sale = row.PriceOriginal
	}
	original := row.PriceOriginal
	if original == nil {
		original = sale
	}

	for _, rule := range triggerRules {
		if fired, reason := rule(alert, sale, original); fired {
			return Decision{Fired: true, Reason: reason}
		}
	}
	return Decision{}
}

func desiredPriceRule(alert *alertdomain.Alert, sale, _ *float64) (bool, string) {
	if alert.DesiredPrice == nil || sale == nil {
		return false, ""
	}
	if *sale <= *alert.DesiredPrice {
		return true, "price<=desired"
	}
	return false, ""
}

func desiredPercentRule(alert *alertdomain.Alert, sale, original *float64) (bool, string) {
	if alert.DesiredPercent == nil || sale == nil || original == nil || *original <= 0 {
		return false, ""
	}
	drop := round4((*original - *sale) / *original * 100)
	if drop >= *alert.DesiredPercent {
		return true, "drop>=" + formatPercent(*alert.DesiredPercent) + "%"
	}
	return false, ""
}

func onSaleRule(alert *alertdomain.Alert, sale, original *float64) (bool, string) {
	if !alert.AlertIfSale || sale == nil || original == nil {
		return false, ""
	}
	if *sale < *original {
		return true, "on-sale"
	}
	return false, ""
}

// round4 rounds half-up to four decimal places so the percent
// comparison is stable at the boundary.
func round4(v float64) float64 {
	return math.Floor(v*10000+0.5) / 10000
}

// formatPercent renders the configured percent without trailing
// zeros, so 20.0 reads "20" and 12.5 reads "12.5".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
