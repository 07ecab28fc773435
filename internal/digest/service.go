package digest

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	accountdomain "github.com/kickwatch/alerts-service/internal/account/domain"
	"github.com/kickwatch/alerts-service/internal/clock"
	"github.com/kickwatch/alerts-service/internal/emailcrypto"
	"github.com/kickwatch/alerts-service/internal/providers/email"
	"github.com/kickwatch/alerts-service/internal/unsubscribe"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const templateName = "alert-digest"

// SuppressionChecker answers whether an address is on the bounce or
// complaint suppression list.
type SuppressionChecker interface {
	IsSuppressed(ctx context.Context, address string) bool
}

// Item is one triggered alert inside a user's digest.
type Item struct {
	ProductID     string
	Title         string
	Brand         string
	URL           string
	Image         string
	PriceSale     *float64
	PriceOriginal *float64
	Reason        string
}

// Report summarizes one dispatch pass over all user digests.
type Report struct {
	Sent       int
	Suppressed int
	Errors     int
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Accounts    accountdomain.Repository
	Codec       *emailcrypto.Codec
	Suppression SuppressionChecker
	Unsubscribe *unsubscribe.Builder
	Provider    email.Provider
	Renderer    *Renderer
	Clock       clock.Clock
}

// Service builds per-user digest emails from triggered alerts and
// dispatches them with per-user failure isolation.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	accounts    accountdomain.Repository
	codec       *emailcrypto.Codec
	suppression SuppressionChecker
	unsubscribe *unsubscribe.Builder
	provider    email.Provider
	renderer    *Renderer
	clock       clock.Clock
}

func New(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("alert.digest"),
		accounts:    p.Accounts,
		codec:       p.Codec,
		suppression: p.Suppression,
		unsubscribe: p.Unsubscribe,
		provider:    p.Provider,
		renderer:    p.Renderer,
		clock:       p.Clock,
	}
}

// Dispatch sends one digest per user. A failure for one user never
// aborts the rest. Users without a resolvable email are skipped and
// intentionally excluded from every counter.
func (s *Service) Dispatch(ctx context.Context, digests map[string][]Item) Report {
	var report Report

	userIDs := make([]string, 0, len(digests))
	for userID := range digests {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	for _, userID := range userIDs {
		items := digests[userID]
		if len(items) == 0 {
			continue
		}

		address, ok := s.resolveEmail(ctx, userID)
		if !ok {
			continue
		}

		if s.suppression.IsSuppressed(ctx, address) {
			report.Suppressed++
			s.log.Info("alert.digest.suppressed",
				zap.String("user_id", userID),
				zap.String("email", emailcrypto.Mask(address)),
			)
			continue
		}

		msg := s.BuildMessage(userID, address, items)
		result, err := s.provider.Send(ctx, msg)
		if err != nil {
			report.Errors++
			s.log.Error("alert.digest.send_failed",
				zap.String("user_id", userID),
				zap.String("email", emailcrypto.Mask(address)),
				zap.Error(err),
			)
			continue
		}

		report.Sent++
		s.log.Info("alert.digest.sent",
			zap.String("user_id", userID),
			zap.String("email", emailcrypto.Mask(address)),
			zap.String("message_id", result.MessageID),
			zap.Int("item_count", len(items)),
		)
	}

	return report
}

// ResolveUserIDByEmail maps an email address to a user id via the hash
// column, trying legacy hash secrets as well. Returns "" when no
// account matches.
func (s *Service) ResolveUserIDByEmail(ctx context.Context, address string) (string, error) {
	candidates := s.codec.HashCandidates(address)
	account, err := s.accounts.FindByEmailHashes(ctx, s.db, candidates)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", nil
	}
	return account.UserID, nil
}

// BuildMessage assembles the digest email for one user.
func (s *Service) BuildMessage(userID, address string, items []Item) email.Message {
	now := s.clock.Now()

	htmlBody, err := s.renderer.Render(templateName, map[string]string{
		"count": strconv.Itoa(len(items)),
		"items": buildHTMLItems(items),
	})
	if err != nil {
		// The template is embedded; a failure here means a build
		// problem, fall back to the text body.
		s.log.Error("alert.digest.render_failed", zap.Error(err))
		htmlBody = "<pre>" + html.EscapeString(buildTextBody(items)) + "</pre>"
	}

	return email.Message{
		To:       address,
		Subject:  Subject(len(items)),
		TextBody: buildTextBody(items),
		HTMLBody: htmlBody,
		Headers:  s.unsubscribe.Headers(userID),
		Tags: map[string]string{
			"category":    "price-alert",
			"alert_count": strconv.Itoa(len(items)),
		},
		RequestID: fmt.Sprintf("alert-digest:%s:%d", userID, now.UnixMilli()),
	}
}

// Subject pluralizes the digest subject line.
func Subject(count int) string {
	subject := fmt.Sprintf("You have %d price alert", count)
	if count > 1 {
		subject += "s"
	}
	return subject
}

func (s *Service) resolveEmail(ctx context.Context, userID string) (string, bool) {
	account, err := s.accounts.FindByUserID(ctx, s.db, userID)
	if err != nil {
		s.log.Warn("alert.digest.skip",
			zap.String("user_id", userID),
			zap.String("reason", "account_lookup_failed"),
			zap.Error(err),
		)
		return "", false
	}
	if account == nil {
		s.log.Warn("alert.digest.skip",
			zap.String("user_id", userID),
			zap.String("reason", "no_account"),
		)
		return "", false
	}

	address, err := s.codec.Decrypt(account.EmailEnc)
	if err != nil {
		s.log.Warn("alert.digest.skip",
			zap.String("user_id", userID),
			zap.String("reason", "decrypt_failed"),
			zap.Error(err),
		)
		return "", false
	}
	return address, true
}

func buildTextBody(items []Item) string {
	var b strings.Builder
	b.WriteString("Your KickWatch alerts hit:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item.Title)
		fmt.Fprintf(&b, "  Brand: %s\n", item.Brand)
		fmt.Fprintf(&b, "  Price: %s (orig %s)\n", FormatMoney(item.PriceSale), FormatMoney(item.PriceOriginal))
		fmt.Fprintf(&b, "  Reason: %s\n", item.Reason)
		fmt.Fprintf(&b, "  Link: %s\n\n", item.URL)
	}
	return b.String()
}

func buildHTMLItems(items []Item) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="border:1px solid #eeeeee;border-radius:8px;margin-bottom:12px;"><tr><td style="padding:16px;">`)
		fmt.Fprintf(&b, `<p style="margin:0 0 4px 0;font-weight:bold;">%s</p>`, html.EscapeString(item.Title))
		fmt.Fprintf(&b, `<p style="margin:0 0 4px 0;color:#555555;">%s</p>`, html.EscapeString(item.Brand))
		fmt.Fprintf(&b, `<p style="margin:0 0 4px 0;">%s <span style="color:#999999;text-decoration:line-through;">%s</span></p>`,
			html.EscapeString(FormatMoney(item.PriceSale)),
			html.EscapeString(FormatMoney(item.PriceOriginal)),
		)
		fmt.Fprintf(&b, `<p style="margin:0 0 8px 0;color:#555555;">%s</p>`, html.EscapeString(item.Reason))
		fmt.Fprintf(&b, `<a href="%s" style="color:#1a73e8;">View product</a>`, html.EscapeString(item.URL))
		b.WriteString(`</td></tr></table>`)
	}
	return b.String()
}
