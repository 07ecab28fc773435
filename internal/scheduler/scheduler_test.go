package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/kickwatch/alerts-service/internal/account/domain"
	accountrepo "github.com/kickwatch/alerts-service/internal/account/repository"
	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	alertrepo "github.com/kickwatch/alerts-service/internal/alert/repository"
	"github.com/kickwatch/alerts-service/internal/clock"
	"github.com/kickwatch/alerts-service/internal/config"
	"github.com/kickwatch/alerts-service/internal/digest"
	"github.com/kickwatch/alerts-service/internal/emailcrypto"
	"github.com/kickwatch/alerts-service/internal/providers/email"
	"github.com/kickwatch/alerts-service/internal/unsubscribe"
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
	warehouserepo "github.com/kickwatch/alerts-service/internal/warehouse/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"go.uber.org/zap"
)

var testDate = time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC)

type capturingProvider struct {
	sent []email.Message
}

func (p *capturingProvider) Send(_ context.Context, msg email.Message) (email.Result, error) {
	p.sent = append(p.sent, msg)
	return email.Result{MessageID: "msg-1"}, nil
}

type noSuppression struct{}

func (noSuppression) IsSuppressed(context.Context, string) bool { return false }

type failingWarehouse struct{}

func (failingWarehouse) FindByDate(context.Context, *gorm.DB, time.Time) ([]warehousedomain.ScrapedProduct, error) {
	return nil, errors.New("warehouse unreachable")
}

func (failingWarehouse) FindLatestBatchDate(context.Context, *gorm.DB) (*time.Time, error) {
	return nil, errors.New("warehouse unreachable")
}

type fixture struct {
	sched    *Scheduler
	conn     *gorm.DB
	codec    *emailcrypto.Codec
	provider *capturingProvider
	cfg      *config.SchedulerConfig
}

func newSchedulerFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&alertdomain.Alert{}, &accountdomain.Account{}, &warehousedomain.ScrapedProduct{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	appCfg := config.Config{
		EmailHashSecret:    "test-secret",
		EmailEncryptionKey: strings.Repeat("k", 32),
		UnsubscribeMailto:  "unsubscribe@kickwatch.ph",
	}
	codec, err := emailcrypto.New(appCfg)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	provider := &capturingProvider{}
	fakeClock := clock.NewFakeClock(testDate)

	digestSvc := digest.New(digest.Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Accounts:    accountrepo.Provide(),
		Codec:       codec,
		Suppression: noSuppression{},
		Unsubscribe: unsubscribe.New(appCfg),
		Provider:    provider,
		Renderer:    digest.NewRenderer(),
		Clock:       fakeClock,
	})

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	schedCfg := config.DefaultSchedulerConfig()
	cfgSource := &schedCfg

	sched, err := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		Alerts:    alertrepo.Provide(),
		Warehouse: warehouserepo.Provide(),
		Digest:    digestSvc,
		GenID:     node,
		Clock:     fakeClock,
		Config:    staticConfigPtr{cfgSource},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	return &fixture{sched: sched, conn: conn, codec: codec, provider: provider, cfg: cfgSource}
}

// staticConfigPtr lets a test mutate the config between runs.
type staticConfigPtr struct {
	cfg *config.SchedulerConfig
}

func (s staticConfigPtr) Get() config.SchedulerConfig { return *s.cfg }

func (f *fixture) addRow(t *testing.T, productID, dwid string, date time.Time, sale, original *float64) {
	t.Helper()
	err := f.conn.Create(&warehousedomain.ScrapedProduct{
		DWID:          dwid,
		ProductID:     productID,
		Year:          date.Year(),
		Month:         int(date.Month()),
		Day:           date.Day(),
		Brand:         "Nike",
		Title:         "Nike Dunk Low",
		URL:           "https://shop.example/dunk-low",
		PriceSale:     sale,
		PriceOriginal: original,
	}).Error
	if err != nil {
		t.Fatalf("insert row: %v", err)
	}
}

func (f *fixture) addAlert(t *testing.T, productID, userID string, desiredPrice float64, channels ...string) {
	t.Helper()
	if len(channels) == 0 {
		channels = []string{alertdomain.ChannelEmail}
	}
	err := f.conn.Create(&alertdomain.Alert{
		ProductID:    productID,
		UserID:       userID,
		DesiredPrice: &desiredPrice,
		Channels:     datatypes.JSONSlice[string](channels),
		Status:       alertdomain.AlertStatusActive,
		CreatedAt:    testDate,
		UpdatedAt:    testDate,
	}).Error
	if err != nil {
		t.Fatalf("insert alert: %v", err)
	}
}

func (f *fixture) addAccount(t *testing.T, userID, address string) {
	t.Helper()
	enc, err := f.codec.Encrypt(address)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	err = f.conn.Create(&accountdomain.Account{
		UserID:    userID,
		EmailEnc:  enc,
		EmailHash: f.codec.Hash(address),
	}).Error
	if err != nil {
		t.Fatalf("insert account: %v", err)
	}
}

func (f *fixture) loadAlert(t *testing.T, productID, userID string) alertdomain.Alert {
	t.Helper()
	var a alertdomain.Alert
	err := f.conn.Where("product_id = ? AND user_id = ?", productID, userID).Take(&a).Error
	if err != nil {
		t.Fatalf("load alert: %v", err)
	}
	return a
}

func TestRunEndToEnd(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.addAccount(t, "U1", "alice@example.com")

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := RunSummary{
		Date:          "2025-08-28",
		ScrapedCount:  1,
		DedupedCount:  1,
		AlertsChecked: 1,
		Triggered:     1,
		EmailsSent:    1,
	}
	if summary != want {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(f.provider.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(f.provider.sent))
	}
	if got := f.provider.sent[0].Subject; got != "You have 1 price alert" {
		t.Fatalf("unexpected subject %q", got)
	}

	alert := f.loadAlert(t, "P1", "U1")
	if alert.Status != alertdomain.AlertStatusTriggered {
		t.Fatalf("unexpected status %q", alert.Status)
	}
	if alert.LastTriggeredAt == nil || !alert.LastTriggeredAt.Equal(testDate) {
		t.Fatalf("unexpected last_triggered_at %v", alert.LastTriggeredAt)
	}
	if alert.ProductCurrentPrice == nil || *alert.ProductCurrentPrice != 90 {
		t.Fatalf("current price snapshot not cached: %v", alert.ProductCurrentPrice)
	}
	if alert.ProductOriginalPrice == nil || *alert.ProductOriginalPrice != 120 {
		t.Fatalf("original price snapshot not cached: %v", alert.ProductOriginalPrice)
	}
	if alert.ProductName != "Nike Dunk Low" || alert.ProductBrand != "Nike" {
		t.Fatalf("display fields not cached: %q / %q", alert.ProductName, alert.ProductBrand)
	}
}

func TestRunDryRunSkipsPersistenceAndDispatch(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.addAccount(t, "U1", "alice@example.com")
	f.cfg.DryRun = true

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.AlertsChecked != 1 || summary.Triggered != 1 {
		t.Fatalf("dry run must count identically: %+v", summary)
	}
	if summary.EmailsSent != 0 || summary.Suppressed != 0 || summary.Errors != 0 {
		t.Fatalf("dry run must not dispatch: %+v", summary)
	}
	if len(f.provider.sent) != 0 {
		t.Fatal("dry run sent email")
	}

	alert := f.loadAlert(t, "P1", "U1")
	if alert.Status != alertdomain.AlertStatusActive {
		t.Fatalf("dry run mutated status to %q", alert.Status)
	}
	if alert.LastTriggeredAt != nil {
		t.Fatal("dry run set last_triggered_at")
	}
}

func TestRunFallsBackToLatestBatch(t *testing.T) {
	f := newSchedulerFixture(t)
	older := testDate.AddDate(0, 0, -2)
	f.addRow(t, "P1", "batch-1", older, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.addAccount(t, "U1", "alice@example.com")

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ScrapedCount != 1 || summary.Triggered != 1 || summary.EmailsSent != 1 {
		t.Fatalf("fallback batch not used: %+v", summary)
	}
}

func TestRunFallbackDisabledRunsEmpty(t *testing.T) {
	f := newSchedulerFixture(t)
	older := testDate.AddDate(0, 0, -2)
	f.addRow(t, "P1", "batch-1", older, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.cfg.FallbackToLatestWhenEmpty = false

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ScrapedCount != 0 || summary.AlertsChecked != 0 {
		t.Fatalf("expected an empty run: %+v", summary)
	}
}

func TestRunTestEmailFiltersToOneUser(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.addAlert(t, "P1", "U2", 100)
	f.addAccount(t, "U1", "alice@example.com")
	f.addAccount(t, "U2", "bob@example.com")

	summary, err := f.sched.Run(context.Background(), testDate, " ALICE@example.com ")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.AlertsChecked != 1 || summary.Triggered != 1 || summary.EmailsSent != 1 {
		t.Fatalf("filter did not narrow to one user: %+v", summary)
	}
	if f.provider.sent[0].To != "alice@example.com" {
		t.Fatalf("wrong recipient %q", f.provider.sent[0].To)
	}
	if other := f.loadAlert(t, "P1", "U2"); other.Status != alertdomain.AlertStatusActive {
		t.Fatalf("filtered-out alert was mutated to %q", other.Status)
	}
}

func TestRunTestEmailUnresolvedShortCircuits(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.addAccount(t, "U1", "alice@example.com")

	summary, err := f.sched.Run(context.Background(), testDate, "nobody@example.com")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ScrapedCount != 1 || summary.DedupedCount != 1 {
		t.Fatalf("batch counts must still be reported: %+v", summary)
	}
	if summary.AlertsChecked != 0 || summary.Triggered != 0 || summary.EmailsSent != 0 {
		t.Fatalf("unresolved filter must not evaluate anything: %+v", summary)
	}
	if alert := f.loadAlert(t, "P1", "U1"); alert.Status != alertdomain.AlertStatusActive {
		t.Fatalf("unresolved filter mutated an alert to %q", alert.Status)
	}
}

func TestRunWidgetOnlyAlertTriggersWithoutEmail(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100, alertdomain.ChannelAppWidget)

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Triggered != 1 || summary.EmailsSent != 0 {
		t.Fatalf("widget-only alert must trigger without mail: %+v", summary)
	}
	if alert := f.loadAlert(t, "P1", "U1"); alert.Status != alertdomain.AlertStatusTriggered {
		t.Fatalf("unexpected status %q", alert.Status)
	}
}

func TestRunSkipsNonActiveAlerts(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.conn.Model(&alertdomain.Alert{}).
		Where("product_id = ? AND user_id = ?", "P1", "U1").
		Update("status", alertdomain.AlertStatusPaused)

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.AlertsChecked != 0 || summary.Triggered != 0 {
		t.Fatalf("paused alerts must be skipped: %+v", summary)
	}
}

func TestRunMaxAlertsPerProductCap(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100, alertdomain.ChannelAppWidget)
	f.addAlert(t, "P1", "U2", 100, alertdomain.ChannelAppWidget)
	f.cfg.MaxAlertsPerProduct = 1

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.AlertsChecked != 1 {
		t.Fatalf("cap not applied: %+v", summary)
	}
}

func TestRunWarehouseFailureIsFatal(t *testing.T) {
	f := newSchedulerFixture(t)
	f.sched.warehouse = failingWarehouse{}

	_, err := f.sched.Run(context.Background(), testDate, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(f.provider.sent) != 0 {
		t.Fatal("nothing should be sent on a failed fetch")
	}
}

func TestRunDeduplicatesAcrossBatches(t *testing.T) {
	f := newSchedulerFixture(t)
	f.addRow(t, "P1", "batch-1", testDate, f64(110), f64(120))
	f.addRow(t, "P1", "batch-2", testDate, f64(90), f64(120))
	f.addAlert(t, "P1", "U1", 100)
	f.addAccount(t, "U1", "alice@example.com")

	summary, err := f.sched.Run(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ScrapedCount != 2 || summary.DedupedCount != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	// The 90 row wins the dedupe, so the alert at 100 fires.
	if summary.Triggered != 1 {
		t.Fatalf("expected the cheaper row to win: %+v", summary)
	}
}
