package scheduler

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	"github.com/kickwatch/alerts-service/internal/clock"
	"github.com/kickwatch/alerts-service/internal/digest"
	"github.com/kickwatch/alerts-service/internal/emailcrypto"
	obsmetrics "github.com/kickwatch/alerts-service/internal/observability/metrics"
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Alerts    alertdomain.Repository
	Warehouse warehousedomain.Repository
	Digest    *digest.Service
	GenID     *snowflake.Node
	Clock     clock.Clock
	Config    ConfigSource
}

type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       ConfigSource
	genID     *snowflake.Node
	clock     clock.Clock
	alerts    alertdomain.Repository
	warehouse warehousedomain.Repository
	digest    *digest.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Alerts == nil || p.Warehouse == nil || p.Digest == nil || p.GenID == nil || p.Clock == nil || p.Config == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config,
		genID:     p.GenID,
		clock:     p.Clock,
		alerts:    p.Alerts,
		warehouse: p.Warehouse,
		digest:    p.Digest,
	}, nil
}

func (s *Scheduler) config() Config {
	return fromAppConfig(s.cfg.Get())
}

// Config exposes the current run settings, defaults applied.
func (s *Scheduler) Config() Config {
	return s.config()
}

// RunToday evaluates today's batch in the configured zone, with the
// configured test email filter. Used by the cron trigger.
func (s *Scheduler) RunToday(ctx context.Context) (RunSummary, error) {
	cfg := s.config()
	return s.Run(ctx, s.clock.Now().In(cfg.Location()), cfg.TestEmail)
}

// Run evaluates one scrape batch against all active alerts and sends
// one digest email per user whose alerts fired. Only the initial
// warehouse fetch and the alert write back are fatal; everything on
// the dispatch side is counted, never propagated.
func (s *Scheduler) Run(ctx context.Context, date time.Time, testEmail string) (RunSummary, error) {
	cfg := s.config()
	start := s.clock.Now()
	ctx, run := s.beginRun(ctx, date, cfg)
	s.logRunStart(ctx, run)

	metrics := obsmetrics.Scheduler()
	totals := &runTotals{}

	rows, err := s.fetchRows(ctx, date, cfg)
	if err != nil {
		metrics.ObserveRun(obsmetrics.RunOutcomeError, time.Since(start))
		s.logger(ctx).Error("warehouse.fetch_failed",
			zap.String("date", date.Format("2006-01-02")),
			zap.Error(err),
		)
		return RunSummary{}, err
	}
	totals.scraped = len(rows)

	deduped := dedupeRows(rows)
	totals.deduped = len(deduped)

	testUserID, ok := s.resolveTestUser(ctx, testEmail)
	if !ok {
		// The filter was requested but matches nobody; evaluating
		// everything would mass-mail users on what is meant to be a
		// smoke test, so the run stops here.
		summary := totals.freeze(date)
		metrics.ObserveRun(obsmetrics.RunOutcomeSkipped, time.Since(start))
		s.logRunSummary(ctx, run, summary)
		return summary, nil
	}

	digests := make(map[string][]digest.Item)
	var mutated []*alertdomain.Alert

	for _, productID := range sortedProductIDs(deduped) {
		row := deduped[productID]
		alerts, err := s.alerts.FindActiveByProduct(ctx, s.db, productID, cfg.MaxAlertsPerProduct)
		if err != nil {
			metrics.ObserveRun(obsmetrics.RunOutcomeError, time.Since(start))
			return RunSummary{}, err
		}

		for i := range alerts {
			alert := &alerts[i]
			if testUserID != "" && alert.UserID != testUserID {
				continue
			}

			totals.checked++
			decision := evaluate(alert, row)
			if !decision.Fired {
				continue
			}
			totals.triggered++

			if cfg.DryRun {
				continue
			}
			applyFired(alert, row, s.clock.Now())
			mutated = append(mutated, alert)

			if !alert.WantsEmail() {
				s.logger(ctx).Info("alert.widget",
					zap.String("user_id", alert.UserID),
					zap.String("product_id", alert.ProductID),
					zap.String("reason", decision.Reason),
				)
				continue
			}
			digests[alert.UserID] = append(digests[alert.UserID], digestItem(row, decision.Reason))
		}
	}

	if len(mutated) > 0 {
		if err := s.alerts.UpdateTriggered(ctx, s.db, mutated); err != nil {
			metrics.ObserveRun(obsmetrics.RunOutcomeError, time.Since(start))
			return RunSummary{}, err
		}
	}

	if !cfg.DryRun && len(digests) > 0 {
		report := s.digest.Dispatch(ctx, digests)
		totals.emailsSent = report.Sent
		totals.suppressed = report.Suppressed
		totals.errors = report.Errors
	}

	metrics.AddChecked(totals.checked)
	metrics.AddTriggered(totals.triggered)
	metrics.AddEmails(obsmetrics.EmailResultSent, totals.emailsSent)
	metrics.AddEmails(obsmetrics.EmailResultSuppressed, totals.suppressed)
	metrics.AddEmails(obsmetrics.EmailResultError, totals.errors)

	outcome := obsmetrics.RunOutcomeOK
	if cfg.DryRun {
		outcome = obsmetrics.RunOutcomeDryRun
	}
	metrics.ObserveRun(outcome, time.Since(start))

	summary := totals.freeze(date)
	s.logRunSummary(ctx, run, summary)
	return summary, nil
}

// fetchRows loads the batch for the requested date, falling back to
// the most recent batch when the date is empty and fallback is on.
func (s *Scheduler) fetchRows(ctx context.Context, date time.Time, cfg Config) ([]warehousedomain.ScrapedProduct, error) {
	started := s.clock.Now()
	rows, err := s.warehouse.FindByDate(ctx, s.db, date)
	if err != nil {
		return nil, err
	}
	s.logger(ctx).Info("warehouse.fetch",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("row_count", len(rows)),
		zap.Int64("took_ms", time.Since(started).Milliseconds()),
	)
	if len(rows) > 0 || !cfg.FallbackToLatestWhenEmpty {
		return rows, nil
	}

	latest, err := s.warehouse.FindLatestBatchDate(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		s.logger(ctx).Warn("warehouse.fallback_empty",
			zap.String("date", date.Format("2006-01-02")),
		)
		return nil, nil
	}
	s.logger(ctx).Warn("warehouse.fallback",
		zap.String("date", date.Format("2006-01-02")),
		zap.String("fallback_date", latest.Format("2006-01-02")),
	)
	return s.warehouse.FindByDate(ctx, s.db, *latest)
}

// resolveTestUser maps the test email filter to a user id. It returns
// ok=false when a filter was supplied but no account matches.
func (s *Scheduler) resolveTestUser(ctx context.Context, testEmail string) (string, bool) {
	address := emailcrypto.Normalize(testEmail)
	if address == "" {
		return "", true
	}
	userID, err := s.digest.ResolveUserIDByEmail(ctx, address)
	if err != nil {
		s.logger(ctx).Warn("scheduler.test_email_lookup_failed",
			zap.String("email", emailcrypto.Mask(address)),
			zap.Error(err),
		)
		return "", false
	}
	if userID == "" {
		s.logger(ctx).Warn("scheduler.test_email_unresolved",
			zap.String("email", emailcrypto.Mask(address)),
		)
		return "", false
	}
	return userID, true
}

func sortedProductIDs(deduped map[string]warehousedomain.ScrapedProduct) []string {
	ids := make([]string, 0, len(deduped))
	for id := range deduped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func digestItem(row warehousedomain.ScrapedProduct, reason string) digest.Item {
	return digest.Item{
		ProductID:     row.ProductID,
		Title:         row.Title,
		Brand:         row.Brand,
		URL:           row.URL,
		Image:         row.Image,
		PriceSale:     row.PriceSale,
		PriceOriginal: row.PriceOriginal,
		Reason:        reason,
	}
}
