// Package preview renders a layout instruction stream as positioned HTML
// for the on-screen invoice preview. It interprets the same ops as the
// PDF renderer, scaled from logical millimeters to CSS pixels, so both
// outputs stay visually equivalent.
package preview

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/StediMove/Invoice-2.0-sub000/internal/render"
)

// DefaultScale is the CSS pixel size of one logical millimeter (96dpi).
const DefaultScale = 96.0 / 25.4

var fontStacks = map[string]string{
	"sans":  `"Helvetica Neue", Arial, sans-serif`,
	"serif": `Georgia, "Times New Roman", serif`,
	"mono":  `"Courier New", monospace`,
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice preview</title>
  <style>
    body { margin: 0; padding: 24px; background: #e5e7eb; }
    .page {
      position: relative;
      width: {{.PageW}}px;
      height: {{.PageH}}px;
      margin: 0 auto 24px;
      background: #ffffff;
      box-shadow: 0 1px 4px rgba(0,0,0,0.2);
      overflow: hidden;
    }
    .el { position: absolute; white-space: nowrap; line-height: 1; }
  </style>
</head>
<body>
{{- range .Pages}}
  <div class="page">
    {{- range .Elements}}
    {{.}}
    {{- end}}
  </div>
{{- end}}
</body>
</html>
`

type pageData struct {
	Elements []template.HTML
}

type docData struct {
	PageW, PageH int
	Pages        []pageData
}

var tpl = template.Must(template.New("preview").Parse(pageTemplate))

// Renderer converts draw instructions into an HTML document.
type Renderer struct {
	Scale float64
}

func NewRenderer() *Renderer {
	return &Renderer{Scale: DefaultScale}
}

// Render interprets the instruction stream into a self-contained HTML page.
func (r *Renderer) Render(ops []render.Op) (string, error) {
	s := r.Scale
	if s <= 0 {
		s = DefaultScale
	}
	doc := docData{
		PageW: int(render.PageWidth * s),
		PageH: int(render.PageHeight * s),
		Pages: []pageData{{}},
	}
	page := &doc.Pages[0]
	for _, op := range ops {
		if op.Kind == render.OpPageBreak {
			doc.Pages = append(doc.Pages, pageData{})
			page = &doc.Pages[len(doc.Pages)-1]
			continue
		}
		if el := r.element(op, s); el != "" {
			page.Elements = append(page.Elements, el)
		}
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) element(op render.Op, s float64) template.HTML {
	css := func(c render.RGB) string {
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	}
	px := func(mm float64) float64 { return mm * s }

	switch op.Kind {
	case render.OpText:
		sizePx := op.Size * s * 25.4 / 72 // pt -> mm -> px
		weight := "normal"
		if op.Bold {
			weight = "bold"
		}
		// op.Y is a text baseline; shift up by the font size so the
		// element's top lands where the PDF draws ascenders.
		style := fmt.Sprintf("left:%.1fpx;top:%.1fpx;font-size:%.1fpx;font-weight:%s;color:%s;font-family:%s",
			px(op.X), px(op.Y)-sizePx, sizePx, weight, css(op.Color), fontStack(op.Font))
		switch op.Align {
		case "center":
			style += ";transform:translateX(-50%)"
		case "right":
			style += ";transform:translateX(-100%)"
		}
		return template.HTML(fmt.Sprintf(`<div class="el" style="%s">%s</div>`, style, template.HTMLEscapeString(op.Text)))
	case render.OpRule:
		w := px(op.X2 - op.X)
		return template.HTML(fmt.Sprintf(`<div class="el" style="left:%.1fpx;top:%.1fpx;width:%.1fpx;height:1px;background:%s"></div>`,
			px(op.X), px(op.Y), w, css(op.Color)))
	case render.OpRect:
		return template.HTML(fmt.Sprintf(`<div class="el" style="left:%.1fpx;top:%.1fpx;width:%.1fpx;height:%.1fpx;background:%s"></div>`,
			px(op.X), px(op.Y), px(op.W), px(op.H), css(op.Color)))
	case render.OpImage:
		return template.HTML(fmt.Sprintf(`<img class="el" src="%s" style="left:%.1fpx;top:%.1fpx;width:%.1fpx;height:%.1fpx" alt="logo">`,
			template.HTMLEscapeString(op.URL), px(op.X), px(op.Y), px(op.W), px(op.H)))
	}
	return ""
}

func fontStack(name string) string {
	if s, ok := fontStacks[name]; ok {
		return s
	}
	return fontStacks["sans"]
}
