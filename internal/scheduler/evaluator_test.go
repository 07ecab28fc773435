package scheduler

import (
	"testing"

	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
)

func snapshot(sale, original *float64) warehousedomain.ScrapedProduct {
	return warehousedomain.ScrapedProduct{
		ProductID:     "p1",
		PriceSale:     sale,
		PriceOriginal: original,
	}
}

func TestEvaluatePriorityOrder(t *testing.T) {
	// All three rules match; the price rule has to win.
	alert := &alertdomain.Alert{
		DesiredPrice:   f64(100),
		DesiredPercent: f64(20),
		AlertIfSale:    true,
	}

	decision := evaluate(alert, snapshot(f64(90), f64(120)))
	if !decision.Fired {
		t.Fatal("expected a fired decision")
	}
	if decision.Reason != "price<=desired" {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
}

func TestEvaluateDesiredPriceBoundaryInclusive(t *testing.T) {
	alert := &alertdomain.Alert{DesiredPrice: f64(90)}
	if d := evaluate(alert, snapshot(f64(90), nil)); !d.Fired {
		t.Fatal("sale equal to desired price must fire")
	}
	if d := evaluate(alert, snapshot(f64(90.01), nil)); d.Fired {
		t.Fatal("sale above desired price must not fire")
	}
}

func TestEvaluateDesiredPriceUsesOriginalWhenNoSale(t *testing.T) {
	alert := &alertdomain.Alert{DesiredPrice: f64(100)}
	if d := evaluate(alert, snapshot(nil, f64(95))); !d.Fired {
		t.Fatal("effective price falls back to the original price")
	}
}

func TestEvaluatePercentBoundaryInclusive(t *testing.T) {
	alert := &alertdomain.Alert{DesiredPercent: f64(20)}

	decision := evaluate(alert, snapshot(f64(80), f64(100)))
	if !decision.Fired {
		t.Fatal("a drop of exactly 20% must fire")
	}
	if decision.Reason != "drop>=20%" {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}

	if d := evaluate(alert, snapshot(f64(80.01), f64(100))); d.Fired {
		t.Fatal("a drop just under 20% must not fire")
	}
}

func TestEvaluatePercentReasonKeepsPrecision(t *testing.T) {
	alert := &alertdomain.Alert{DesiredPercent: f64(12.5)}
	decision := evaluate(alert, snapshot(f64(70), f64(100)))
	if !decision.Fired || decision.Reason != "drop>=12.5%" {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestEvaluatePercentRequiresPositiveOriginal(t *testing.T) {
	alert := &alertdomain.Alert{DesiredPercent: f64(20)}
	if d := evaluate(alert, snapshot(f64(0), f64(0))); d.Fired {
		t.Fatal("zero original price must not divide")
	}
}

func TestEvaluateOnSaleStrictInequality(t *testing.T) {
	alert := &alertdomain.Alert{AlertIfSale: true}

	decision := evaluate(alert, snapshot(f64(99), f64(100)))
	if !decision.Fired || decision.Reason != "on-sale" {
		t.Fatalf("unexpected decision %+v", decision)
	}

	if d := evaluate(alert, snapshot(f64(100), f64(100))); d.Fired {
		t.Fatal("sale equal to original is not on sale")
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	alert := &alertdomain.Alert{DesiredPrice: f64(50)}
	decision := evaluate(alert, snapshot(f64(90), nil))
	if decision.Fired || decision.Reason != "" {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	alert := &alertdomain.Alert{DesiredPercent: f64(33.33)}
	first := evaluate(alert, snapshot(f64(66.67), f64(100)))
	for i := 0; i < 10; i++ {
		if got := evaluate(alert, snapshot(f64(66.67), f64(100))); got != first {
			t.Fatalf("decision changed between runs: %+v vs %+v", got, first)
		}
	}
}
