package formatters

import (
	"fmt"
	"strings"
)

type style int

const (
	textStyle style = iota
	markdownStyle
)

// page builds a document that reads the same in plain text and markdown.
type page struct {
	style style
	out   strings.Builder
}

func (p *page) title(s string) {
	if p.style == markdownStyle {
		fmt.Fprintf(&p.out, "# %s\n\n", s)
		return
	}
	fmt.Fprintf(&p.out, "=== %s ===\n\n", strings.ToUpper(s))
}

func (p *page) section(s string) {
	if p.style == markdownStyle {
		fmt.Fprintf(&p.out, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(&p.out, "--- %s ---\n", strings.ToUpper(s))
}

func (p *page) subsection(s string) {
	if p.style == markdownStyle {
		fmt.Fprintf(&p.out, "### %s\n\n", s)
		return
	}
	fmt.Fprintf(&p.out, "%s\n", s)
}

// field writes "key: value"; empty values are skipped.
func (p *page) field(key, value string) {
	if value == "" {
		return
	}
	if p.style == markdownStyle {
		fmt.Fprintf(&p.out, "**%s:** %s  \n", key, value)
		return
	}
	fmt.Fprintf(&p.out, "%s: %s\n", key, value)
}

func (p *page) paragraph(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.out.WriteString(strings.TrimRight(s, "\n"))
	p.out.WriteString("\n\n")
}

// list writes one bullet per item, or none when items is empty.
func (p *page) list(items []string) {
	if len(items) == 0 {
		p.none()
		return
	}
	for _, item := range items {
		fmt.Fprintf(&p.out, "- %s\n", item)
	}
	p.out.WriteString("\n")
}

func (p *page) none() {
	if p.style == markdownStyle {
		p.out.WriteString("_None_\n\n")
		return
	}
	p.out.WriteString("(none)\n\n")
}

func (p *page) gap() {
	p.out.WriteString("\n")
}

func (p *page) String() string {
	return p.out.String()
}

// PageFormatter renders one data type as text or markdown
type PageFormatter struct {
	dataType string
	style    style
	render   func(p *page, data any) error
}

func (pf *PageFormatter) Format(data any) (string, error) {
	p := &page{style: pf.style}
	if err := pf.render(p, data); err != nil {
		return "", err
	}
	return p.String(), nil
}

func (pf *PageFormatter) SupportedType() string {
	return pf.dataType
}
