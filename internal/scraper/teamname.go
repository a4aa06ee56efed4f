package scraper

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var (
	adminPathRe  = regexp.MustCompile(`/admin/([^/]+)/`)
	titleSplitRe = regexp.MustCompile(`[|\-–—]`)
	fontSizeRe   = regexp.MustCompile(`(?i)font-size\s*:\s*(\d+(?:\.\d+)?)\s*(px|rem|em)?`)
)

// ключи без регистра и разделителей: workspace_name == workspaceName
var (
	islandNameKeys = []string{
		"workspacename", "workspace.name",
		"teamname", "team.name",
		"organizationname", "organization.name",
		"accountname", "account.name",
	}
	islandWorkspaceIDKeys = []string{"workspaceid", "workspace.id", "accountid", "account.id"}
	islandOrgIDKeys       = []string{"organizationid", "orgid", "organization.id", "org.id"}
	islandParents         = map[string]struct{}{
		"workspace": {}, "team": {}, "organization": {}, "org": {}, "account": {},
	}
)

// teamIdentity resolves the team name, first accepted source wins:
// data island, headings, URL, navigation, page title.
func (s *Scraper) teamIdentity(doc *goquery.Document, pageURL string) Result {
	var res Result

	island := s.dataIsland(doc)
	res.WorkspaceID = firstOf(island, islandWorkspaceIDKeys)
	res.OrganizationID = firstOf(island, islandOrgIDKeys)
	for _, k := range islandNameKeys {
		if name, ok := s.acceptTeamName(island[k]); ok {
			res.TeamName = name
			return res
		}
	}

	for _, src := range []func() string{
		func() string { return s.headingName(doc) },
		func() string { return s.urlName(pageURL) },
		func() string { return s.navName(doc) },
		func() string { return s.titleName(doc) },
	} {
		if name := src(); name != "" {
			res.TeamName = name
			return res
		}
	}
	return res
}

func (s *Scraper) acceptTeamName(raw string) (string, bool) {
	t := strings.Join(strings.Fields(raw), " ")
	n := utf8.RuneCountInString(t)
	if n < 3 || n > 49 || strings.Contains(t, "@") {
		return "", false
	}
	lower := strings.ToLower(t)
	if strings.Contains(lower, "member") || strings.Contains(lower, "setting") {
		return "", false
	}
	for _, w := range s.cfg.NavSkipWords {
		if lower == w {
			return "", false
		}
	}
	return t, true
}

func (s *Scraper) dataIsland(doc *goquery.Document) map[string]string {
	hits := map[string]string{}
	for _, sel := range s.cfg.DataIslandSelectors {
		doc.Find(sel).Each(func(_ int, script *goquery.Selection) {
			var v any
			if err := json.Unmarshal([]byte(script.Text()), &v); err != nil {
				return
			}
			collectIsland(v, "", hits)
		})
	}
	return hits
}

// collectIsland walks the JSON in a stable key order and keeps the first value per key.
func collectIsland(v any, parent string, hits map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			key := normalizeKey(k)
			child := val[k]

			if scalar, ok := scalarString(child); ok {
				record(hits, key, scalar)
				if _, isParent := islandParents[parent]; isParent && (key == "name" || key == "id") {
					record(hits, parent+"."+key, scalar)
				}
				continue
			}
			collectIsland(child, key, hits)
		}
	case []any:
		for _, item := range val {
			collectIsland(item, parent, hits)
		}
	}
}

func record(hits map[string]string, key, value string) {
	if value == "" {
		return
	}
	if _, ok := hits[key]; !ok {
		hits[key] = value
	}
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "").Replace(k)
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func firstOf(hits map[string]string, keys []string) string {
	for _, k := range keys {
		if v := hits[k]; v != "" {
			return v
		}
	}
	return ""
}

type headingCandidate struct {
	text  string
	score float64
	pos   int
}

// headingName ranks headings by tag weight and inline font size, ties go to the earlier one.
func (s *Scraper) headingName(doc *goquery.Document) string {
	var candidates []headingCandidate
	doc.Find(strings.Join(s.cfg.HeadingSelectors, ", ")).Each(func(i int, el *goquery.Selection) {
		name, ok := s.acceptTeamName(innerText(el))
		if !ok {
			return
		}
		candidates = append(candidates, headingCandidate{
			text:  name,
			score: headingWeight(goquery.NodeName(el)) + fontSizePx(el),
			pos:   i,
		})
	})
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})
	return candidates[0].text
}

func headingWeight(tag string) float64 {
	switch tag {
	case "h1":
		return 30
	case "h2":
		return 20
	case "h3":
		return 10
	default:
		return 0
	}
}

func fontSizePx(el *goquery.Selection) float64 {
	style, ok := el.Attr("style")
	if !ok {
		return 0
	}
	m := fontSizeRe.FindStringSubmatch(style)
	if m == nil {
		return 0
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "rem", "em":
		return size * 16
	default:
		return size
	}
}

func (s *Scraper) urlName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	m := adminPathRe.FindStringSubmatch(u.EscapedPath())
	if m == nil {
		return ""
	}
	seg, err := url.PathUnescape(m[1])
	if err != nil {
		return ""
	}
	name, _ := s.acceptTeamName(strings.ReplaceAll(seg, "-", " "))
	return name
}

func (s *Scraper) navName(doc *goquery.Document) string {
	var found string
	doc.Find(strings.Join(s.cfg.NavSelectors, ", ")).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if name, ok := s.acceptTeamName(innerText(el)); ok {
			found = name
			return false
		}
		return true
	})
	return found
}

func (s *Scraper) titleName(doc *goquery.Document) string {
	title := doc.Find("title").First().Text()
	parts := titleSplitRe.Split(title, -1)
	// без разделителя заголовок: это обычно название сайта
	if len(parts) < 2 {
		return ""
	}
	for _, p := range parts {
		if name, ok := s.acceptTeamName(p); ok {
			return name
		}
	}
	return ""
}
