package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// innerText joins the visible text nodes of the selection with single spaces.
func innerText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func (s *Scraper) isInternal(email string) bool {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	for _, d := range s.cfg.InternalDomains {
		if d == "" {
			continue
		}
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// distinctEmails: уникальные адреса в порядке появления, в нижнем регистре
func distinctEmails(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, e := range emailRe.FindAllString(text, -1) {
		e = strings.ToLower(e)
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

const monthWord = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

var dateRe = regexp.MustCompile(`(?i)\b(?:` +
	monthWord + `\s+\d{1,2},?\s+\d{4}` +
	`|\d{1,2}\s+` + monthWord + `,?\s+\d{4}` +
	`|\d{4}-\d{1,2}-\d{1,2}` +
	`|\d{1,2}/\d{1,2}/\d{4}` +
	`)\b`)

var monthTokenRe = regexp.MustCompile(`(?i)[a-z]+\.?`)

var dateLayouts = []string{"Jan 2 2006", "2 Jan 2006", "2006-1-2", "1/2/2006"}

// lastDate parses the last date-looking token and returns it as UTC midnight.
func lastDate(text string) *time.Time {
	matches := dateRe.FindAllString(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if t, ok := parseDateToken(matches[i]); ok {
			return &t
		}
	}
	return nil
}

func parseDateToken(tok string) (time.Time, bool) {
	tok = strings.ReplaceAll(tok, ",", " ")
	// "September" / "Sept." -> "Sep"
	tok = monthTokenRe.ReplaceAllStringFunc(tok, func(m string) string {
		m = strings.TrimSuffix(m, ".")
		if len(m) < 3 {
			return m
		}
		return strings.ToUpper(m[:1]) + strings.ToLower(m[1:3])
	})
	tok = strings.Join(strings.Fields(tok), " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, tok); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return d, true
		}
	}
	return time.Time{}, false
}
