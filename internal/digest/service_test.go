package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	accountdomain "github.com/kickwatch/alerts-service/internal/account/domain"
	accountrepo "github.com/kickwatch/alerts-service/internal/account/repository"
	"github.com/kickwatch/alerts-service/internal/clock"
	"github.com/kickwatch/alerts-service/internal/config"
	"github.com/kickwatch/alerts-service/internal/emailcrypto"
	"github.com/kickwatch/alerts-service/internal/providers/email"
	"github.com/kickwatch/alerts-service/internal/unsubscribe"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeProvider struct {
	sent    []email.Message
	failFor map[string]bool
}

func (p *fakeProvider) Send(_ context.Context, msg email.Message) (email.Result, error) {
	if p.failFor[msg.To] {
		return email.Result{}, errors.New("smtp unavailable")
	}
	p.sent = append(p.sent, msg)
	return email.Result{MessageID: "msg-1"}, nil
}

type fakeSuppression struct {
	blocked map[string]bool
}

func (s *fakeSuppression) IsSuppressed(_ context.Context, address string) bool {
	return s.blocked[emailcrypto.Normalize(address)]
}

type digestFixture struct {
	svc      *Service
	conn     *gorm.DB
	codec    *emailcrypto.Codec
	provider *fakeProvider
	blocked  *fakeSuppression
}

func newFixture(t *testing.T) *digestFixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&accountdomain.Account{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{
		EmailHashSecret:        "current-secret",
		EmailHashLegacySecrets: []string{"old-secret"},
		EmailEncryptionKey:     strings.Repeat("k", 32),
		UnsubscribeBaseURL:     "https://kickwatch.ph",
		UnsubscribeMailto:      "unsubscribe@kickwatch.ph",
	}
	codec, err := emailcrypto.New(cfg)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	provider := &fakeProvider{failFor: map[string]bool{}}
	blocked := &fakeSuppression{blocked: map[string]bool{}}

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Accounts:    accountrepo.Provide(),
		Codec:       codec,
		Suppression: blocked,
		Unsubscribe: unsubscribe.New(cfg),
		Provider:    provider,
		Renderer:    NewRenderer(),
		Clock:       clock.NewFakeClock(time.Date(2025, 8, 28, 23, 30, 0, 0, time.UTC)),
	})

	return &digestFixture{svc: svc, conn: conn, codec: codec, provider: provider, blocked: blocked}
}

func (f *digestFixture) addAccount(t *testing.T, userID, address string) {
	t.Helper()
	enc, err := f.codec.Encrypt(address)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := f.conn.Create(&accountdomain.Account{
		UserID:    userID,
		EmailEnc:  enc,
		EmailHash: f.codec.Hash(address),
	}).Error; err != nil {
		t.Fatalf("insert account: %v", err)
	}
}

func sampleItems() []Item {
	sale := 4495.0
	orig := 5995.0
	return []Item{
		{
			ProductID:     "nike-dunk-low",
			Title:         "Nike Dunk Low",
			Brand:         "Nike",
			URL:           "https://shop.example/dunk-low",
			PriceSale:     &sale,
			PriceOriginal: &orig,
			Reason:        "price<=desired",
		},
		{
			ProductID: "aj1-mid",
			Title:     "Air Jordan 1 Mid",
			Brand:     "Jordan",
			URL:       "https://shop.example/aj1-mid",
			Reason:    "on-sale",
		},
	}
}

func TestDispatchSendsOneDigestPerUser(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "user-1", "alice@example.com")

	report := f.svc.Dispatch(context.Background(), map[string][]Item{
		"user-1": sampleItems(),
	})

	if report.Sent != 1 || report.Suppressed != 0 || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(f.provider.sent) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(f.provider.sent))
	}

	msg := f.provider.sent[0]
	if msg.To != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "You have 2 price alerts" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.Tags["category"] != "price-alert" || msg.Tags["alert_count"] != "2" {
		t.Fatalf("unexpected tags: %v", msg.Tags)
	}
	if !strings.Contains(msg.TextBody, "Nike Dunk Low") || !strings.Contains(msg.TextBody, "Price: PHP 4495.00 (orig PHP 5995.00)") {
		t.Fatalf("unexpected text body:\n%s", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "Price: N/A (orig N/A)") {
		t.Fatalf("missing prices should render N/A:\n%s", msg.TextBody)
	}
	if !strings.Contains(msg.HTMLBody, "Air Jordan 1 Mid") {
		t.Fatal("HTML body missing item")
	}
	if _, ok := msg.Headers[unsubscribe.HeaderListUnsubscribe]; !ok {
		t.Fatal("missing List-Unsubscribe header")
	}
	if msg.Headers[unsubscribe.HeaderListUnsubscribePost] != "List-Unsubscribe=One-Click" {
		t.Fatalf("unexpected one-click header: %q", msg.Headers[unsubscribe.HeaderListUnsubscribePost])
	}
	if !strings.HasPrefix(msg.RequestID, "alert-digest:user-1:") {
		t.Fatalf("unexpected request id %q", msg.RequestID)
	}
}

func TestDispatchSkipsUsersWithoutAccount(t *testing.T) {
	f := newFixture(t)

	report := f.svc.Dispatch(context.Background(), map[string][]Item{
		"ghost": sampleItems(),
	})

	if report.Sent != 0 || report.Suppressed != 0 || report.Errors != 0 {
		t.Fatalf("skipped user must not count anywhere: %+v", report)
	}
	if len(f.provider.sent) != 0 {
		t.Fatal("nothing should be sent")
	}
}

func TestDispatchSkipsUndecryptableAccounts(t *testing.T) {
	f := newFixture(t)
	if err := f.conn.Create(&accountdomain.Account{
		UserID:    "user-1",
		EmailEnc:  "garbage",
		EmailHash: "whatever",
	}).Error; err != nil {
		t.Fatalf("insert account: %v", err)
	}

	report := f.svc.Dispatch(context.Background(), map[string][]Item{
		"user-1": sampleItems(),
	})

	if report.Sent != 0 || report.Suppressed != 0 || report.Errors != 0 {
		t.Fatalf("decrypt failure must not count anywhere: %+v", report)
	}
}

func TestDispatchCountsSuppressed(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "user-1", "alice@example.com")
	f.blocked.blocked["alice@example.com"] = true

	report := f.svc.Dispatch(context.Background(), map[string][]Item{
		"user-1": sampleItems(),
	})

	if report.Suppressed != 1 || report.Sent != 0 || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(f.provider.sent) != 0 {
		t.Fatal("suppressed user must not receive mail")
	}
}

func TestDispatchIsolatesSendFailures(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "user-1", "alice@example.com")
	f.addAccount(t, "user-2", "bob@example.com")
	f.provider.failFor["alice@example.com"] = true

	report := f.svc.Dispatch(context.Background(), map[string][]Item{
		"user-1": sampleItems(),
		"user-2": sampleItems(),
	})

	if report.Errors != 1 || report.Sent != 1 {
		t.Fatalf("one failure must not block the other user: %+v", report)
	}
}

func TestResolveUserIDByEmail(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "user-1", "alice@example.com")

	userID, err := f.svc.ResolveUserIDByEmail(context.Background(), " ALICE@example.com ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id %q", userID)
	}

	missing, err := f.svc.ResolveUserIDByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("resolve missing: %v", err)
	}
	if missing != "" {
		t.Fatalf("expected empty user id, got %q", missing)
	}
}

func TestResolveUserIDByEmailLegacyHash(t *testing.T) {
	f := newFixture(t)

	// Account hashed under the legacy secret only.
	legacyCodec, err := emailcrypto.New(config.Config{
		EmailHashSecret:    "old-secret",
		EmailEncryptionKey: strings.Repeat("k", 32),
	})
	if err != nil {
		t.Fatalf("legacy codec: %v", err)
	}
	enc, err := f.codec.Encrypt("carol@example.com")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := f.conn.Create(&accountdomain.Account{
		UserID:    "user-3",
		EmailEnc:  enc,
		EmailHash: legacyCodec.Hash("carol@example.com"),
	}).Error; err != nil {
		t.Fatalf("insert account: %v", err)
	}

	userID, err := f.svc.ResolveUserIDByEmail(context.Background(), "carol@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != "user-3" {
		t.Fatalf("legacy hash lookup failed, got %q", userID)
	}
}
