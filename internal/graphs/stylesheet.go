package graphs

import "sync"

// DefaultCSS styles the page chrome shared by every rendered graph.
const DefaultCSS = `
.kgviz-container { font-family: system-ui, sans-serif; margin: 0; }
.kgviz-tooltip { max-width: 320px; }
.kgviz-tooltip b { display: block; margin-bottom: 2px; }
.kgviz-tooltip .kgviz-type { color: #888; font-size: 11px; }
.kgviz-dimmed { opacity: 0.15; }
`

// Stylesheet is CSS shared by several Views. Its text is only emitted while at least
// one handle is held.
type Stylesheet struct {
	mu      *sync.Mutex
	css     string
	holders int
}

func NewStylesheet(css string) *Stylesheet {
	return &Stylesheet{mu: &sync.Mutex{}, css: css}
}

// StyleHandle is one holder's claim on a Stylesheet.
type StyleHandle struct {
	sheet *Stylesheet
	once  sync.Once
}

// Acquire registers a new holder.
func (s *Stylesheet) Acquire() *StyleHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holders++
	return &StyleHandle{sheet: s}
}

// Release drops the claim. Calling it more than once has no further effect.
func (h *StyleHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.sheet.mu.Lock()
		defer h.sheet.mu.Unlock()
		h.sheet.holders--
	})
}

// Active reports whether any handle is held.
func (s *Stylesheet) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holders > 0
}

// CSS returns the stylesheet text, or "" when nothing holds it.
func (s *Stylesheet) CSS() string {
	if s == nil || !s.Active() {
		return ""
	}
	return s.css
}

// CSS returns the text of the stylesheet the handle refers to, or "" for a nil handle.
func (h *StyleHandle) CSS() string {
	if h == nil {
		return ""
	}
	return h.sheet.CSS()
}
