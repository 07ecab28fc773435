package email

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, msg Message) (Result, error) {
	_ = ctx

	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)
	messageID := uuid.NewString()

	raw := p.buildMessage(messageID, msg)
	if err := smtp.SendMail(addr, auth, p.cfg.From, []string{msg.To}, raw); err != nil {
		return Result{}, err
	}
	return Result{MessageID: messageID}, nil
}

func (p *SMTPProvider) buildMessage(messageID string, msg Message) []byte {
	boundary := "kw-" + messageID

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", p.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Message-ID: <%s@kickwatch.ph>\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")

	for _, key := range sortedKeys(msg.Headers) {
		fmt.Fprintf(&b, "%s: %s\r\n", key, msg.Headers[key])
	}
	for _, key := range sortedKeys(msg.Tags) {
		fmt.Fprintf(&b, "X-Tag-%s: %s\r\n", key, msg.Tags[key])
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
