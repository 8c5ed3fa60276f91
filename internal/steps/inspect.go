package steps

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/jarmon/jarmonbuild/internal/logfields"
)

// inspectOutput reports the title of the generated index page. A missing or
// unparsable page is reported but never fails the step.
func (s *Apidocs) inspectOutput(outDir string) {
	index := filepath.Join(outDir, "index.html")
	title, err := pageTitle(index)
	if err != nil {
		s.deps.Reporter.Info("Generated docs have no readable index page", logfields.Path(index), logfields.Error(err))
		return
	}
	s.deps.Reporter.Debug("Generated docs", logfields.Path(index), "title", title)
}

// pageTitle returns the text of the first <title> element in the file.
func pageTitle(path string) (string, error) {
	// #nosec G304 -- path is inside the build directory
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return "", err
	}
	return findTitle(doc), nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return strings.TrimSpace(b.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
