package export

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name, source, want string
	}{
		{"simple", "<html><head><title>kgviz deck</title></head></html>", "kgviz deck"},
		{"trimmed", "<title>\n  Spaced  \n</title>", "Spaced"},
		{"first wins", "<title>one</title><body><svg><title>two</title></svg></body>", "one"},
		{"empty element", "<title></title>", ""},
		{"missing", "<p>no title</p>", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageTitle(tt.source); got != tt.want {
				t.Errorf("PageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{Settle: -1}.withDefaults()
	if o.Width != DefaultWidth || o.Height != DefaultHeight || o.Scale != 1 || o.Timeout != DefaultTimeout {
		t.Errorf("defaults = %+v", o)
	}
	if o.Settle != 0 {
		t.Errorf("negative settle = %v, want 0", o.Settle)
	}
	if o := (Options{}).withDefaults(); o.Settle != DefaultSettle {
		t.Errorf("zero settle = %v, want %v", o.Settle, DefaultSettle)
	}
}

func TestFileURL(t *testing.T) {
	u, err := FileURL("deck.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "file:///") || !strings.HasSuffix(u, "/deck.html") {
		t.Errorf("FileURL = %q", u)
	}
}

func findChrome() string {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func TestShooter_CaptureFile(t *testing.T) {
	chrome := findChrome()
	if chrome == "" {
		t.Skip("no chrome binary found")
	}

	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	src := `<!DOCTYPE html><html><head><title>Shot</title></head><body><div id="box" style="width:50px;height:50px;background:red"></div></body></html>`
	if err := os.WriteFile(page, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewShooter(Options{Width: 200, Height: 100, Settle: -1, ChromePath: chrome, Selector: "#box", Timeout: 20 * time.Second}, nil)
	out := filepath.Join(dir, "page.png")
	shot, err := s.CaptureFile(context.Background(), page, out)
	if err != nil {
		t.Fatal(err)
	}
	if shot.Title != "Shot" {
		t.Errorf("title = %q", shot.Title)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Errorf("output is not a png")
	}
}
