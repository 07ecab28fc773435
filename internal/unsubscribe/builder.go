package unsubscribe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/kickwatch/alerts-service/internal/config"
)

const (
	HeaderListUnsubscribe     = "List-Unsubscribe"
	HeaderListUnsubscribePost = "List-Unsubscribe-Post"

	oneClickValue = "List-Unsubscribe=One-Click"
)

// Builder produces one-click unsubscribe headers for outgoing digests.
// Tokens are HMACs over the user id so the unsubscribe endpoint can
// verify them without a database lookup.
type Builder struct {
	baseURL string
	mailto  string
	secret  []byte
}

func New(cfg config.Config) *Builder {
	return &Builder{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.UnsubscribeBaseURL), "/"),
		mailto:  strings.TrimSpace(cfg.UnsubscribeMailto),
		secret:  []byte(strings.TrimSpace(cfg.EmailHashSecret)),
	}
}

// Headers returns the RFC 8058 headers for the given user.
func (b *Builder) Headers(userID string) map[string]string {
	values := make([]string, 0, 2)
	if b.baseURL != "" {
		values = append(values, "<"+b.unsubscribeURL(userID)+">")
	}
	if b.mailto != "" {
		values = append(values, "<mailto:"+b.mailto+">")
	}
	if len(values) == 0 {
		values = append(values, "<mailto:unsubscribe@kickwatch.ph>")
	}

	return map[string]string{
		HeaderListUnsubscribe:     strings.Join(values, ", "),
		HeaderListUnsubscribePost: oneClickValue,
	}
}

// Token returns the verification token for a user id.
func (b *Builder) Token(userID string) string {
	mac := hmac.New(sha256.New, b.secret)
	mac.Write([]byte(strings.TrimSpace(userID)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyToken checks a token produced by Token.
func (b *Builder) VerifyToken(userID, token string) bool {
	expected := b.Token(userID)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(token)))
}

func (b *Builder) unsubscribeURL(userID string) string {
	q := url.Values{}
	q.Set("uid", strings.TrimSpace(userID))
	q.Set("token", b.Token(userID))
	return fmt.Sprintf("%s/unsubscribe?%s", b.baseURL, q.Encode())
}
