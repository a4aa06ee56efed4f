// Package scraper extracts a team roster from an HTML snapshot of an
// admin members page.
package scraper

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

var (
	ErrNoTeamName = errors.New("could not detect team name")
	ErrNoMembers  = errors.New("no members found on page")
)

type Member struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     entity.Role `json:"role"`
	JoinedAt *time.Time  `json:"joined_at,omitempty"`
}

type Result struct {
	TeamName       string   `json:"teamName"`
	WorkspaceID    string   `json:"workspaceId,omitempty"`
	OrganizationID string   `json:"organizationId,omitempty"`
	OwnerEmail     string   `json:"ownerEmail,omitempty"`
	Members        []Member `json:"members"`
}

// Validate reports what a sync needs and the page did not give.
func (r Result) Validate() error {
	if strings.TrimSpace(r.TeamName) == "" {
		return ErrNoTeamName
	}
	if len(r.Members) == 0 {
		return ErrNoMembers
	}
	return nil
}

type Config struct {
	// RowSelectors are tried in order, the first one yielding members wins
	RowSelectors        []string
	NameSelectors       []string
	CellSelectors       []string
	HeadingSelectors    []string
	NavSelectors        []string
	DataIslandSelectors []string
	InternalDomains     []string
	// NameSkipWords reject status/action cells as member names
	NameSkipWords []string
	// NavSkipWords reject navigation labels as team names
	NavSkipWords      []string
	MembersURLPattern *regexp.Regexp
}

func DefaultConfig() Config {
	return Config{
		RowSelectors: []string{
			"table tbody tr",
			`[role="row"]`,
			`[class*="user-row"]`,
			`[class*="member"]`,
			`[class*="list-item"]`,
			"tr",
		},
		NameSelectors: []string{`[class*="name"]`, `[class*="user"] span`, "td:first-child"},
		CellSelectors: []string{"td", `[role="cell"]`},
		HeadingSelectors: []string{
			"h1", "h2", "h3",
			`[class*="title"]`, `[class*="heading"]`, `[class*="workspace"]`,
		},
		NavSelectors: []string{
			`[class*="breadcrumb"] a`, "nav a", `[role="navigation"] a`, "header a",
		},
		DataIslandSelectors: []string{
			"script#__NEXT_DATA__",
			`script[type="application/json"]`,
			`script[type="application/ld+json"]`,
		},
		InternalDomains: []string{"openai.com", "chatgpt.com"},
		NameSkipWords: []string{
			"owner", "admin", "member", "pending", "active", "invited", "edit", "remove", "delete",
		},
		NavSkipWords: []string{
			"settings", "members", "billing", "home", "admin", "workspaces", "workspace",
			"general", "identity", "apps", "gpts", "chatgpt", "openai", "back",
		},
		MembersURLPattern: regexp.MustCompile(`^https://chatgpt\.com/admin/[^/]+/members`),
	}
}

type Scraper struct {
	cfg Config
}

func New(cfg Config) *Scraper {
	def := DefaultConfig()
	if len(cfg.RowSelectors) == 0 {
		cfg.RowSelectors = def.RowSelectors
	}
	if len(cfg.NameSelectors) == 0 {
		cfg.NameSelectors = def.NameSelectors
	}
	if len(cfg.CellSelectors) == 0 {
		cfg.CellSelectors = def.CellSelectors
	}
	if len(cfg.HeadingSelectors) == 0 {
		cfg.HeadingSelectors = def.HeadingSelectors
	}
	if len(cfg.NavSelectors) == 0 {
		cfg.NavSelectors = def.NavSelectors
	}
	if len(cfg.DataIslandSelectors) == 0 {
		cfg.DataIslandSelectors = def.DataIslandSelectors
	}
	if cfg.InternalDomains == nil {
		cfg.InternalDomains = def.InternalDomains
	}
	if cfg.NameSkipWords == nil {
		cfg.NameSkipWords = def.NameSkipWords
	}
	if cfg.NavSkipWords == nil {
		cfg.NavSkipWords = def.NavSkipWords
	}
	if cfg.MembersURLPattern == nil {
		cfg.MembersURLPattern = def.MembersURLPattern
	}
	domains := make([]string, 0, len(cfg.InternalDomains))
	for _, d := range cfg.InternalDomains {
		domains = append(domains, strings.ToLower(strings.TrimSpace(d)))
	}
	cfg.InternalDomains = domains
	return &Scraper{cfg: cfg}
}

// IsAdminMembersURL reports whether the page is a roster worth syncing.
func (s *Scraper) IsAdminMembersURL(pageURL string) bool {
	return s.cfg.MembersURLPattern.MatchString(pageURL)
}

// Scrape parses the page and extracts the roster. It fails only on
// unreadable HTML; an empty roster is a valid result.
func (s *Scraper) Scrape(r io.Reader, pageURL string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse html: %w", err)
	}
	return s.ScrapeDocument(doc, pageURL), nil
}

func (s *Scraper) ScrapeDocument(doc *goquery.Document, pageURL string) Result {
	res := s.teamIdentity(doc, pageURL)

	members := s.rowMembers(doc)
	if len(members) == 0 {
		members = s.textMembers(doc)
	}
	res.Members = members

	for _, m := range members {
		if m.Role == entity.RoleOwner {
			res.OwnerEmail = m.Email
			break
		}
	}
	return res
}
