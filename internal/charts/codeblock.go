package charts

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CodeStyle is the chroma style code blocks are coloured with.
const CodeStyle = "github-dark"

const figureCSS = `
.kgviz-code { font: 13px/1.5 ui-monospace, monospace; padding: 12px; border-radius: 6px; overflow: auto; background: #0d1117; }
.kgviz-code figcaption { color: #9cdcfe; margin-bottom: 6px; }
.kgviz-code .chroma { margin: 0; }
.kgviz-code .chroma .line { display: block; }
.kgviz-code .chroma .ln { display: inline-block; min-width: 2em; }
`

// Cypher has no chroma lexer of its own.
var cypherLexer = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:            "Cypher",
		Aliases:         []string{"cypher", "cql"},
		Filenames:       []string{"*.cypher", "*.cql"},
		CaseInsensitive: true,
		EnsureNL:        true,
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\n`, Type: chroma.Text, Mutator: nil},
				{Pattern: `\s+`, Type: chroma.Text, Mutator: nil},
				{Pattern: `//[^\n]*`, Type: chroma.CommentSingle, Mutator: nil},
				{Pattern: `/\*(.|\n)*?\*/`, Type: chroma.CommentMultiline, Mutator: nil},
				{Pattern: chroma.Words(``, `\b`,
					`optional`, `detach`, `order`, `by`, `starts`, `ends`, `match`, `where`, `return`, `with`, `create`, `merge`, `delete`, `set`, `remove`,
					`skip`, `limit`, `unwind`, `as`, `and`, `or`, `xor`, `not`, `in`, `is`, `distinct`,
					`case`, `when`, `then`, `else`, `end`, `on`, `call`, `yield`, `union`, `all`, `contains`,
					`asc`, `desc`, `exists`), Type: chroma.Keyword, Mutator: nil},
				{Pattern: `(true|false|null)\b`, Type: chroma.KeywordConstant, Mutator: nil},
				{Pattern: `"(\\\\|\\"|[^"])*"`, Type: chroma.LiteralStringDouble, Mutator: nil},
				{Pattern: `'(\\\\|\\'|[^'])*'`, Type: chroma.LiteralStringSingle, Mutator: nil},
				{Pattern: "`[^`]*`", Type: chroma.NameVariable, Mutator: nil},
				{Pattern: `\$\w+`, Type: chroma.NameVariable, Mutator: nil},
				{Pattern: `(:)(\s*)([A-Za-z_]\w*)`, Type: chroma.ByGroups(chroma.Punctuation, chroma.Text, chroma.NameLabel), Mutator: nil},
				{Pattern: `[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?`, Type: chroma.LiteralNumber, Mutator: nil},
				{Pattern: `([A-Za-z_]\w*)(\s*)(\()`, Type: chroma.ByGroups(chroma.NameFunction, chroma.Text, chroma.Punctuation), Mutator: nil},
				{Pattern: `(->|<-|--|<>|<=|>=|=~|[=<>+\-*/%^|])`, Type: chroma.Operator, Mutator: nil},
				{Pattern: `[()\[\]{}.,;:]`, Type: chroma.Punctuation, Mutator: nil},
				{Pattern: `[A-Za-z_]\w*`, Type: chroma.Name, Mutator: nil},
			},
		}
	},
))

// CodeCSS returns the stylesheet shared by every code block.
var CodeCSS = sync.OnceValue(func() string {
	var buf strings.Builder
	buf.WriteString(figureCSS)
	f := chromahtml.New(chromahtml.WithClasses(true), chromahtml.WithLineNumbers(true))
	if err := f.WriteCSS(&buf, styles.Get(CodeStyle)); err != nil {
		return figureCSS
	}
	return buf.String()
})

type CodeData struct {
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Code     string `json:"code" yaml:"code"`
	// Highlight lists 1-based line numbers to emphasise.
	Highlight []int `json:"highlight,omitempty" yaml:"highlight,omitempty"`
}

// CodeBlock renders source code with line numbers, syntax colouring and
// highlighted lines.
type CodeBlock struct {
	base
	data   CodeData
	code   string
	lexer  chroma.Lexer
	ranges [][2]int
}

func NewCodeBlock(data CodeData, o Options, logger *slog.Logger) *CodeBlock {
	c := &CodeBlock{base: newBase("code", o, logger)}
	c.resolve(data)
	return c
}

func (c *CodeBlock) resolve(data CodeData) {
	c.data = data
	c.code = strings.TrimRight(strings.ReplaceAll(data.Code, "\r\n", "\n"), "\n")
	lines := strings.Count(c.code, "\n") + 1

	c.ranges = c.ranges[:0]
	hl := slices.Clone(data.Highlight)
	slices.Sort(hl)
	for _, n := range slices.Compact(hl) {
		if n < 1 || n > lines {
			c.logger.Warn("highlighted line out of range", "line", n, "lines", lines)
			continue
		}
		c.ranges = append(c.ranges, [2]int{n, n})
	}

	c.lexer = nil
	if data.Language != "" {
		c.lexer = lexers.Get(strings.ToLower(data.Language))
		if c.lexer == nil {
			c.logger.Warn("no highlighting rules for language", "language", data.Language)
		}
	}
	if c.lexer == nil {
		c.lexer = lexers.Fallback
	}
	c.lexer = chroma.Coalesce(c.lexer)
}

// UpdateData replaces the code.
func (c *CodeBlock) UpdateData(data CodeData) {
	if !c.alive("UpdateData") {
		return
	}
	c.resolve(data)
}

func el(a atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// highlighted formats the code as chroma's <pre class="chroma"> markup.
func (c *CodeBlock) highlighted() ([]*html.Node, error) {
	it, err := c.lexer.Tokenise(nil, c.code)
	if err != nil {
		return nil, fmt.Errorf("tokenising: %w", err)
	}
	f := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(true),
		chromahtml.HighlightLines(c.ranges),
	)
	var buf bytes.Buffer
	if err := f.Format(&buf, styles.Get(CodeStyle), it); err != nil {
		return nil, fmt.Errorf("formatting: %w", err)
	}
	return html.ParseFragment(&buf, el(atom.Div, ""))
}

// Node builds the block as a detached <figure> element.
func (c *CodeBlock) Node() *html.Node {
	fig := el(atom.Figure, "kgviz-code")
	fig.Attr = append(fig.Attr, html.Attribute{Key: "style", Val: fmt.Sprintf("width:%dpx", int(c.opts.Width))})
	if c.data.Language != "" {
		fig.Attr = append(fig.Attr, html.Attribute{Key: "data-language", Val: strings.ToLower(c.data.Language)})
	}
	if c.opts.Title != "" {
		fig.AppendChild(el(atom.Figcaption, "", text(c.opts.Title)))
	}

	nodes, err := c.highlighted()
	if err != nil {
		c.logger.Warn("highlighting failed, emitting plain code", "language", c.data.Language, "error", err)
		fig.AppendChild(el(atom.Pre, "chroma", el(atom.Code, "", text(c.code))))
		return fig
	}
	for _, n := range nodes {
		fig.AppendChild(n)
	}
	return fig
}

// Render writes a standalone HTML page holding the block.
func (c *CodeBlock) Render(w io.Writer) error {
	if c.destroyed {
		return ErrDestroyed
	}
	css := CodeCSS() + c.style.CSS()
	doc := el(atom.Html, "",
		el(atom.Head, "",
			el(atom.Title, "", text(c.pageTitle())),
			el(atom.Style, "", text(css)),
		),
		el(atom.Body, "", c.Node()),
	)
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("rendering code block: %w", err)
	}
	return nil
}
