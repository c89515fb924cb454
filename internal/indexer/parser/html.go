// Package parser extracts text fragments from corpus documents.
package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
)

// Parser turns a document into the text fragments to index.
type Parser interface {
	Parse(ctx context.Context, path string) ([]string, error)
}

// HTML yields one fragment per element holding that element's own text,
// i.e. its direct text children. Markup errors are tolerated the way
// browsers tolerate them.
type HTML struct{}

func (HTML) Parse(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", apperrors.ErrParse, path, err)
	}
	defer f.Close()
	return ParseHTML(f)
}

// ParseHTML reads an HTML document from r.
func ParseHTML(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrParse, err)
	}
	var fragments []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
			if text := ownText(n); text != "" {
				fragments = append(fragments, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return fragments, nil
}

func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			continue
		}
		if s := strings.TrimSpace(c.Data); s != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s)
		}
	}
	return b.String()
}
