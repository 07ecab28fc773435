package digest

import (
	"strings"
	"testing"
)

func TestRenderStringReplacesPlaceholders(t *testing.T) {
	r := NewRenderer()
	out := r.RenderString("Hello {{name}}, {{count}} alerts", map[string]string{
		"name":  "Alice",
		"count": "2",
	})
	if out != "Hello Alice, 2 alerts" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderStringStripsUnknownPlaceholders(t *testing.T) {
	r := NewRenderer()
	out := r.RenderString("Hello {{name}}{{mystery}}", map[string]string{"name": "Alice"})
	if out != "Hello Alice" {
		t.Fatalf("unknown placeholder not stripped: %q", out)
	}
}

func TestRenderStringConditional(t *testing.T) {
	r := NewRenderer()
	tmpl := "price {{sale}}{% if original %} was {{original}}{% endif %}"

	with := r.RenderString(tmpl, map[string]string{"sale": "100", "original": "200"})
	if with != "price 100 was 200" {
		t.Fatalf("conditional should render: %q", with)
	}

	without := r.RenderString(tmpl, map[string]string{"sale": "100"})
	if without != "price 100" {
		t.Fatalf("conditional should be dropped: %q", without)
	}
}

func TestRenderEmbeddedDigestTemplate(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(templateName, map[string]string{
		"count": "3",
		"items": "<p>item markup</p>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "3 of your watched sneakers") {
		t.Fatalf("count not substituted: %q", out)
	}
	if !strings.Contains(out, "<p>item markup</p>") {
		t.Fatal("items not substituted")
	}
	if strings.Contains(out, "{{") {
		t.Fatal("unresolved placeholders left in output")
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(nil); got != "N/A" {
		t.Fatalf("nil price: %q", got)
	}
	v := 1234.567
	if got := FormatMoney(&v); got != "PHP 1234.57" {
		t.Fatalf("rounding: %q", got)
	}
	w := 99.999
	if got := FormatMoney(&w); got != "PHP 100.00" {
		t.Fatalf("carry: %q", got)
	}
	x := 1234.5
	if got := FormatMoney(&x); got != "PHP 1234.50" {
		t.Fatalf("padding: %q", got)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(1); got != "You have 1 price alert" {
		t.Fatalf("singular: %q", got)
	}
	if got := Subject(2); got != "You have 2 price alerts" {
		t.Fatalf("plural: %q", got)
	}
}
