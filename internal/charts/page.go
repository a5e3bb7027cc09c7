package charts

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/components"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page collects charts and code blocks into one document. Charts keep the order they
// were added in, code blocks follow them.
type Page struct {
	Title  string
	CSS    string
	charts []components.Charter
	blocks []*CodeBlock
}

func NewPage(title string) *Page {
	return &Page{Title: title}
}

func (p *Page) AddCharts(c ...components.Charter) {
	p.charts = append(p.charts, c...)
}

func (p *Page) AddBlocks(b ...*CodeBlock) {
	p.blocks = append(p.blocks, b...)
}

// Len returns the number of charts and blocks on the page.
func (p *Page) Len() int {
	return len(p.charts) + len(p.blocks)
}

// Render writes the page. The go-echarts output is parsed and the code blocks are
// appended to its body.
func (p *Page) Render(w io.Writer) error {
	page := components.NewPage()
	page.SetPageTitle(p.Title)
	page.AddCharts(p.charts...)
	css := p.CSS
	if len(p.blocks) > 0 {
		css += CodeCSS()
	}
	if css != "" {
		page.AddCustomizedHeaders("<style>" + css + "</style>")
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	if len(p.blocks) == 0 {
		_, err := buf.WriteTo(w)
		return err
	}

	doc, err := html.Parse(&buf)
	if err != nil {
		return fmt.Errorf("parsing rendered page: %w", err)
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return fmt.Errorf("rendered page has no body")
	}
	for _, b := range p.blocks {
		body.AppendChild(b.Node())
	}
	return html.Render(w, doc)
}

// findElement returns the first element of type a in document order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
