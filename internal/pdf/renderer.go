// Package pdf renders a layout instruction stream to PDF bytes. It is a
// thin interpreter: one logical millimeter in the stream is one document
// millimeter, and no invoice logic lives here.
package pdf

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/StediMove/Invoice-2.0-sub000/internal/render"
)

var fontNames = map[string]string{
	"sans":  "Helvetica",
	"serif": "Times",
	"mono":  "Courier",
}

// Renderer converts draw instructions into A4 PDF documents.
type Renderer struct {
	// FetchImages controls whether image ops are resolved over HTTP.
	// Disabled in tests to keep rendering hermetic.
	FetchImages bool
	client      *http.Client
}

func NewRenderer() *Renderer {
	return &Renderer{
		FetchImages: true,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Render interprets the instruction stream into PDF bytes.
func (r *Renderer) Render(ops []render.Op) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, op := range ops {
		switch op.Kind {
		case render.OpPageBreak:
			pdf.AddPage()
		case render.OpText:
			r.text(pdf, tr, op)
		case render.OpRule:
			pdf.SetDrawColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
			pdf.SetLineWidth(0.2)
			pdf.Line(op.X, op.Y, op.X2, op.Y2)
		case render.OpRect:
			pdf.SetFillColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
			pdf.Rect(op.X, op.Y, op.W, op.H, "F")
		case render.OpImage:
			r.image(pdf, op)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) text(pdf *gofpdf.Fpdf, tr func(string) string, op render.Op) {
	family, ok := fontNames[op.Font]
	if !ok {
		family = fontNames["sans"]
	}
	style := ""
	if op.Bold {
		style = "B"
	}
	pdf.SetFont(family, style, op.Size)
	pdf.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))

	s := tr(op.Text)
	x := op.X
	switch op.Align {
	case "center":
		x -= pdf.GetStringWidth(s) / 2
	case "right":
		x -= pdf.GetStringWidth(s)
	}
	pdf.Text(x, op.Y, s)
}

// image places a remote logo. A failed fetch skips the op: a missing
// logo must not fail the whole document.
func (r *Renderer) image(pdf *gofpdf.Fpdf, op render.Op) {
	if !r.FetchImages || op.URL == "" {
		return
	}
	resp, err := r.client.Get(op.URL)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}
	imgType := imageType(op.URL, resp.Header.Get("Content-Type"))
	if imgType == "" {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	pdf.RegisterImageOptionsReader(op.URL, opts, resp.Body)
	if pdf.Err() {
		// bad image data; clear and continue without the logo
		pdf.ClearError()
		return
	}
	pdf.ImageOptions(op.URL, op.X, op.Y, op.W, op.H, false, opts, 0, "")
}

func imageType(url, contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "PNG"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "JPG"
	case strings.Contains(contentType, "gif"):
		return "GIF"
	}
	switch strings.ToLower(path.Ext(url)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	}
	return ""
}

// Filename returns the suggested download name for an invoice document.
func Filename(number string) string {
	return "invoice-" + number + ".pdf"
}
