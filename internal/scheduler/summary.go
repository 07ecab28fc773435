package scheduler

import "time"

// RunSummary is the immutable result of one evaluation run.
type RunSummary struct {
	Date          string `json:"date"`
	ScrapedCount  int    `json:"scrapedCount"`
	DedupedCount  int    `json:"dedupedCount"`
	AlertsChecked int    `json:"alertsChecked"`
	Triggered     int    `json:"triggered"`
	EmailsSent    int    `json:"emailsSent"`
	Suppressed    int    `json:"suppressed"`
	Errors        int    `json:"errors"`
}

// runTotals accumulates counts while a run is in flight and freezes
// into a RunSummary at the end. It never leaves the package.
type runTotals struct {
	scraped    int
	deduped    int
	checked    int
	triggered  int
	emailsSent int
	suppressed int
	errors     int
}

func (t *runTotals) freeze(date time.Time) RunSummary {
	return RunSummary{
		Date:          date.Format("2006-01-02"),
		ScrapedCount:  t.scraped,
		DedupedCount:  t.deduped,
		AlertsChecked: t.checked,
		Triggered:     t.triggered,
		EmailsSent:    t.emailsSent,
		Suppressed:    t.suppressed,
		Errors:        t.errors,
	}
}
