package fetch

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLPage is a Page backed by a parsed HTML document.
type HTMLPage struct {
	url string
	doc *goquery.Document
}

// NewHTMLPage parses r as HTML.
func NewHTMLPage(url string, r io.Reader) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &HTMLPage{url: url, doc: doc}, nil
}

// NewHTMLPageString parses an HTML string.
func NewHTMLPageString(url, html string) (*HTMLPage, error) {
	return NewHTMLPage(url, strings.NewReader(html))
}

func (p *HTMLPage) URL() string { return p.url }

func (p *HTMLPage) Title() string {
	return cleanText(p.doc.Find("title").First().Text())
}

func (p *HTMLPage) Texts(sel string) []string {
	var out []string
	p.doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func (p *HTMLPage) Attrs(sel, attr string) []string {
	var out []string
	p.doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	})
	return out
}

func (p *HTMLPage) First(sel string) string {
	texts := p.Texts(sel)
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
