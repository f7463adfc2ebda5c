package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/StediMove/Invoice-2.0-sub000/internal/i18n"
)

// Page geometry in millimeters (A4 portrait). The instruction stream uses
// these logical units directly: one op-mm equals one document-mm in the
// PDF and a fixed pixel scale in the preview.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 15.0

	contentLeft   = Margin
	contentRight  = PageWidth - Margin
	contentCenter = PageWidth / 2
	contentBottom = PageHeight - Margin

	lineHeight = 5.0
	rowHeight  = 7.0
)

// OpKind discriminates draw instructions.
type OpKind string

const (
	OpText      OpKind = "text"
	OpRule      OpKind = "rule"
	OpRect      OpKind = "rect"
	OpImage     OpKind = "image"
	OpPageBreak OpKind = "pagebreak"
)

// RGB is a resolved draw color.
type RGB struct {
	R, G, B uint8
}

// ParseHex converts a "#rrggbb" (or "#rgb") string to RGB. Malformed
// input yields black rather than an error; color strings reaching the
// layout engine have already been resolved and defaulted.
func ParseHex(s string) RGB {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// Op is one renderer-agnostic draw instruction. Which fields are
// meaningful depends on Kind:
//
//	text:  Text, X, Y (baseline), Size (pt), Bold, Align, Font, Color
//	rule:  X, Y, X2, Y2, Color
//	rect:  X, Y, W, H, Color
//	image: URL, X, Y, W, H
//	pagebreak: no fields; the renderer starts a new page
type Op struct {
	Kind  OpKind
	Text  string
	X, Y  float64
	X2    float64
	Y2    float64
	W, H  float64
	Size  float64
	Bold  bool
	Align string // "left", "center", "right"
	Font  string // "sans", "serif", "mono"
	Color RGB
	URL   string
}

// Party is the displayed contact block for one side of the invoice.
type Party struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

// PaymentInfo describes the payment method block. Type is one of
// "card", "bank", "mobile".
type PaymentInfo struct {
	Type           string
	CardLast4      string
	BankName       string
	RegNumber      string
	AccountNumber  string
	IBAN           string
	MobileNumber   string
	MobileProvider string
}

// Document carries everything the layout engine needs besides the
// resolved presentation. Items and Totals are pointers/nilable on
// purpose: a nil value is a structural absence and fails the render,
// while empty-but-present values lay out normally.
type Document struct {
	Number           string
	Title            string
	Description      string
	Currency         string
	IssueDate        time.Time
	DueDate          time.Time
	PaymentTermsDays int
	TaxRate          float64
	Items            []Item
	Totals           *Totals
	Customer         Party
	Payment          *PaymentInfo
	Notes            string
	Lang             string
}

// MissingDataError reports a structurally absent required field. Merely
// empty optional data never produces it.
type MissingDataError struct {
	Field string
}

func (e *MissingDataError) Error() string {
	return "missing required invoice data: " + e.Field
}

// Layout turns a resolved presentation and document data into the flat
// draw-instruction stream both renderers consume. Blocks are stacked top
// to bottom by a vertical cursor; optional lines that have no value are
// skipped entirely so later blocks move up. Item rows that would run past
// the usable page height emit a page break and reprint the table header.
func Layout(p Presentation, doc Document) ([]Op, error) {
	if doc.Number == "" {
		return nil, &MissingDataError{Field: "number"}
	}
	if doc.Items == nil {
		return nil, &MissingDataError{Field: "items"}
	}
	if doc.Totals == nil {
		return nil, &MissingDataError{Field: "totals"}
	}

	lang := doc.Lang
	if !i18n.IsSupported(lang) {
		lang = i18n.LangEN
	}

	l := &layouter{
		p:       p,
		doc:     doc,
		lang:    lang,
		y:       Margin,
		primary: ParseHex(p.PrimaryColor),
		text:    ParseHex(p.TextColor),
	}
	l.titleBlock()
	l.partiesBlock()
	l.detailsBlock()
	l.subjectBlock()
	l.itemsTable()
	l.totalsBlock()
	l.paymentBlock()
	l.notesBlock()
	return l.ops, nil
}

type layouter struct {
	p       Presentation
	doc     Document
	lang    string
	ops     []Op
	y       float64
	primary RGB
	text    RGB
}

func (l *layouter) t(code string) string { return i18n.T(l.lang, code) }

func (l *layouter) push(op Op) {
	if op.Kind == OpText && op.Font == "" {
		op.Font = l.p.FontFamily
	}
	l.ops = append(l.ops, op)
}

func (l *layouter) textOp(s string, x, y, size float64, color RGB, align string, bold bool) {
	l.push(Op{Kind: OpText, Text: s, X: x, Y: y, Size: size, Color: color, Align: align, Bold: bold})
}

// ensure starts a new page when h more millimeters would overflow the
// usable height.
func (l *layouter) ensure(h float64) {
	if l.y+h > contentBottom {
		l.push(Op{Kind: OpPageBreak})
		l.y = Margin
	}
}

func (l *layouter) titleBlock() {
	if l.p.LogoURL != "" {
		l.push(Op{Kind: OpImage, URL: l.p.LogoURL, X: contentRight - 30, Y: Margin, W: 30, H: 12})
	}
	l.y += 10
	l.textOp(l.t("invoice"), contentCenter, l.y, 22, l.primary, "center", true)
	l.y += 8
	l.textOp("#"+l.doc.Number, contentCenter, l.y, 10, l.text, "center", false)
	l.y += 12
}

// partiesBlock lays the two-column From / To block. Both columns are
// emitted line by line with absent values skipped; the cursor advances
// once, by the taller column.
func (l *layouter) partiesBlock() {
	const rightCol = 110.0

	type line struct {
		s    string
		bold bool
	}
	appendLine := func(lines []line, s string, bold bool) []line {
		if s == "" {
			return lines
		}
		return append(lines, line{s: s, bold: bold})
	}

	var left []line
	left = appendLine(left, l.p.CompanyName, true)
	left = appendLine(left, l.p.CompanyAddress, false)
	left = appendLine(left, l.p.CompanyPhone, false)
	left = appendLine(left, l.p.CompanyEmail, false)
	left = appendLine(left, l.p.CompanyWebsite, false)
	left = appendLine(left, l.p.TaxID, false)
	left = appendLine(left, l.p.BusinessLicense, false)

	var right []line
	right = appendLine(right, l.doc.Customer.Name, true)
	right = appendLine(right, l.doc.Customer.Address, false)
	right = appendLine(right, l.doc.Customer.Email, false)
	right = appendLine(right, l.doc.Customer.Phone, false)

	l.textOp(l.t("from"), contentLeft, l.y, 11, l.primary, "left", true)
	l.textOp(l.t("to"), rightCol, l.y, 11, l.primary, "left", true)
	top := l.y + 7

	for i, ln := range left {
		size := 9.0
		if ln.bold {
			size = 10
		}
		l.textOp(ln.s, contentLeft, top+float64(i)*lineHeight, size, l.text, "left", ln.bold)
	}
	for i, ln := range right {
		size := 9.0
		if ln.bold {
			size = 10
		}
		l.textOp(ln.s, rightCol, top+float64(i)*lineHeight, size, l.text, "left", ln.bold)
	}

	rows := len(left)
	if len(right) > rows {
		rows = len(right)
	}
	l.y = top + float64(rows)*lineHeight + 8
}

func (l *layouter) detailsBlock() {
	const rightCol = 110.0
	dateFmt := "2006-01-02"

	l.textOp(l.t("issue_date")+": "+l.doc.IssueDate.Format(dateFmt), contentLeft, l.y, 9, l.text, "left", false)
	l.textOp(l.t("due_date")+": "+l.doc.DueDate.Format(dateFmt), rightCol, l.y, 9, l.text, "left", false)
	l.y += lineHeight
	l.textOp(l.t("currency")+": "+l.doc.Currency, contentLeft, l.y, 9, l.text, "left", false)
	l.textOp(fmt.Sprintf("%s: %d %s", l.t("payment_terms"), l.doc.PaymentTermsDays, l.t("days")), rightCol, l.y, 9, l.text, "left", false)
	l.y += lineHeight + 6
}

func (l *layouter) subjectBlock() {
	if l.doc.Title != "" {
		l.textOp(l.doc.Title, contentLeft, l.y, 12, l.text, "left", true)
		l.y += 7
	}
	if l.doc.Description != "" {
		l.textOp(l.doc.Description, contentLeft, l.y, 9, l.text, "left", false)
		l.y += 6
	}
	l.y += 4
}

// Table column anchors: description is left-aligned, numeric columns are
// right-aligned at their edge.
const (
	colDescX   = contentLeft + 2
	colQtyX    = 135.0
	colRateX   = 163.0
	colAmountX = contentRight - 2
)

func (l *layouter) tableHeader() {
	white := RGB{R: 255, G: 255, B: 255}
	l.push(Op{Kind: OpRect, X: contentLeft, Y: l.y, W: contentRight - contentLeft, H: 8, Color: l.primary})
	base := l.y + 5.5
	l.textOp(l.t("description"), colDescX, base, 9, white, "left", true)
	l.textOp(l.t("quantity"), colQtyX, base, 9, white, "right", true)
	l.textOp(l.t("rate"), colRateX, base, 9, white, "right", true)
	l.textOp(l.t("amount"), colAmountX, base, 9, white, "right", true)
	l.y += 8
}

func (l *layouter) itemsTable() {
	ruleColor := RGB{R: 229, G: 231, B: 235}

	l.ensure(8 + rowHeight)
	l.tableHeader()
	for _, it := range l.doc.Items {
		if l.y+rowHeight > contentBottom {
			l.push(Op{Kind: OpPageBreak})
			l.y = Margin
			l.tableHeader()
		}
		base := l.y + 5
		l.textOp(it.Description, colDescX, base, 9, l.text, "left", false)
		l.textOp(strconv.FormatFloat(it.Quantity, 'f', -1, 64), colQtyX, base, 9, l.text, "right", false)
		l.textOp(FormatMoney(l.doc.Currency, it.Rate), colRateX, base, 9, l.text, "right", false)
		l.textOp(FormatMoney(l.doc.Currency, it.Amount), colAmountX, base, 9, l.text, "right", false)
		l.y += rowHeight
		l.push(Op{Kind: OpRule, X: contentLeft, Y: l.y, X2: contentRight, Y2: l.y, Color: ruleColor})
	}
	l.y += 4
}

func (l *layouter) totalsBlock() {
	const labelX = 160.0
	t := l.doc.Totals

	l.ensure(26)
	l.textOp(l.t("subtotal"), labelX, l.y, 10, l.text, "right", false)
	l.textOp(FormatMoney(l.doc.Currency, t.Subtotal), colAmountX, l.y, 10, l.text, "right", false)
	l.y += 6
	l.textOp(fmt.Sprintf("%s (%.1f%%)", l.t("tax"), l.doc.TaxRate), labelX, l.y, 10, l.text, "right", false)
	l.textOp(FormatMoney(l.doc.Currency, t.TaxAmount), colAmountX, l.y, 10, l.text, "right", false)
	l.y += 3
	l.push(Op{Kind: OpRule, X: 130, Y: l.y, X2: contentRight, Y2: l.y, Color: l.primary})
	l.y += 6
	l.textOp(l.t("total"), labelX, l.y, 13, l.primary, "right", true)
	l.textOp(FormatMoney(l.doc.Currency, t.Total), colAmountX, l.y, 13, l.primary, "right", true)
	l.y += 12
}

// paymentBlock formats the default payment method per its type. The whole
// block disappears when no method exists.
func (l *layouter) paymentBlock() {
	pm := l.doc.Payment
	if pm == nil {
		return
	}
	var parts []string
	switch pm.Type {
	case "card":
		if pm.CardLast4 != "" {
			parts = append(parts, "•••• "+pm.CardLast4)
		}
	case "bank":
		if pm.BankName != "" {
			parts = append(parts, pm.BankName)
		}
		switch {
		case pm.RegNumber != "" && pm.AccountNumber != "":
			parts = append(parts, pm.RegNumber+" "+pm.AccountNumber)
		case pm.IBAN != "":
			parts = append(parts, pm.IBAN)
		}
	case "mobile":
		if pm.MobileNumber != "" {
			parts = append(parts, pm.MobileNumber)
		} else if pm.MobileProvider != "" {
			parts = append(parts, pm.MobileProvider)
		}
	}
	detail := strings.Join(parts, " ")
	if detail == "" {
		return
	}
	l.ensure(14)
	l.textOp(l.t("payment_method"), contentLeft, l.y, 10, l.primary, "left", true)
	l.y += 6
	l.textOp(detail, contentLeft, l.y, 9, l.text, "left", false)
	l.y += 10
}

func (l *layouter) notesBlock() {
	if l.doc.Notes == "" {
		return
	}
	l.ensure(14)
	l.textOp(l.t("notes"), contentLeft, l.y, 10, l.primary, "left", true)
	l.y += 6
	l.textOp(l.doc.Notes, contentLeft, l.y, 9, l.text, "left", false)
	l.y += 10
}
