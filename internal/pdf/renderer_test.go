package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/StediMove/Invoice-2.0-sub000/internal/render"
)

func testOps(t *testing.T) []render.Op {
	t.Helper()
	totals := render.ComputeTotals([]render.Item{{Description: "Design", Quantity: 1, Rate: 500, Amount: 500}}, 20)
	ops, err := render.Layout(render.Resolve(nil, nil), render.Document{
		Number:    "INV-2026-0007",
		Currency:  "USD",
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		TaxRate:   20,
		Items:     []render.Item{{Description: "Design", Quantity: 1, Rate: 500, Amount: 500}},
		Totals:    &totals,
		Customer:  render.Party{Name: "Acme"},
		Lang:      "en",
	})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return ops
}

func newTestRenderer() *Renderer {
	r := NewRenderer()
	r.FetchImages = false
	return r
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := newTestRenderer().Render(testOps(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output does not start with PDF header: %q", data[:8])
	}
	if !bytes.Contains(data, []byte("/Count 1")) {
		t.Error("expected a single-page document")
	}
}

func TestRenderMultiplePages(t *testing.T) {
	ops := testOps(t)
	// two explicit breaks -> three pages
	ops = append(ops, render.Op{Kind: render.OpPageBreak}, render.Op{Kind: render.OpPageBreak})
	data, err := newTestRenderer().Render(ops)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(data, []byte("/Count 3")) {
		t.Error("expected three pages")
	}
}

func TestRenderSkipsUnfetchableImage(t *testing.T) {
	ops := append(testOps(t), render.Op{Kind: render.OpImage, URL: "https://nope.invalid/logo.png", X: 10, Y: 10, W: 30, H: 12})
	r := NewRenderer() // fetching enabled; the host does not resolve
	if _, err := r.Render(ops); err != nil {
		t.Fatalf("unreachable logo must not fail the render: %v", err)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("INV-2026-0007"); got != "invoice-INV-2026-0007.pdf" {
		t.Errorf("Filename = %q", got)
	}
}
