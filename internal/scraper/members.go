package scraper

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

var personNameRe = regexp.MustCompile(`^[\p{L}\s\-'.]+$`)

const fallbackRoleContext = 100

// rowMembers walks the row selector families in priority order.
func (s *Scraper) rowMembers(doc *goquery.Document) []Member {
	for _, sel := range s.cfg.RowSelectors {
		var members []Member
		seen := map[string]struct{}{}

		doc.Find(sel).Each(func(_ int, row *goquery.Selection) {
			if isContainer(row, sel) {
				return
			}
			m, ok := s.rowMember(row)
			if !ok {
				return
			}
			if _, dup := seen[m.Email]; dup {
				return
			}
			seen[m.Email] = struct{}{}
			members = append(members, m)
		})

		if len(members) > 0 {
			return members
		}
	}
	return nil
}

func (s *Scraper) rowMember(row *goquery.Selection) (Member, bool) {
	text := innerText(row)
	// в строке бывают и чужие адреса ("invited by ..."), участник идёт первым
	var email string
	for _, e := range distinctEmails(text) {
		if !s.isInternal(e) {
			email = e
			break
		}
	}
	if email == "" {
		return Member{}, false
	}

	withoutEmail := removeFold(text, email)

	name := s.rowName(row)
	if name == "" {
		name = entity.NameFromEmail(email)
	}

	return Member{
		Email:    email,
		Name:     name,
		Role:     detectRole(withoutEmail),
		JoinedAt: lastDate(withoutEmail),
	}, true
}

// isContainer: внутри элемента есть строки того же селектора с разными адресами
func isContainer(row *goquery.Selection, sel string) bool {
	inner := map[string]struct{}{}
	row.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if found := distinctEmails(innerText(el)); len(found) > 0 {
			inner[found[0]] = struct{}{}
		}
		return len(inner) < 2
	})
	return len(inner) >= 2
}

func (s *Scraper) rowName(row *goquery.Selection) string {
	for _, sel := range s.cfg.NameSelectors {
		var found string
		row.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			t := innerText(el)
			if s.nameCandidate(t, 100) {
				found = t
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	for _, sel := range s.cfg.CellSelectors {
		var found string
		row.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			t := innerText(el)
			if s.nameCandidate(t, 50) && personNameRe.MatchString(t) {
				found = t
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func (s *Scraper) nameCandidate(t string, maxLen int) bool {
	n := utf8.RuneCountInString(t)
	if n < 2 || n > maxLen || strings.Contains(t, "@") {
		return false
	}
	words := strings.FieldsFunc(strings.ToLower(t), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		for _, skip := range s.cfg.NameSkipWords {
			if w == skip {
				return false
			}
		}
	}
	return true
}

// textMembers: запасной путь: все адреса из текста страницы
func (s *Scraper) textMembers(doc *goquery.Document) []Member {
	text := innerText(doc.Find("body"))
	if text == "" {
		text = innerText(doc.Selection)
	}
	lower := strings.ToLower(text)

	var members []Member
	for _, email := range distinctEmails(text) {
		if s.isInternal(email) {
			continue
		}
		members = append(members, Member{
			Email: email,
			Name:  entity.NameFromEmail(email),
			Role:  detectRole(surrounding(lower, email, fallbackRoleContext)),
		})
	}
	return members
}

// surrounding returns up to n bytes on each side of the first occurrence of needle.
func surrounding(text, needle string, n int) string {
	i := strings.Index(text, needle)
	if i < 0 {
		return ""
	}
	start := max(0, i-n)
	end := min(len(text), i+len(needle)+n)
	return text[start:i] + " " + text[i+len(needle):end]
}

func detectRole(text string) entity.Role {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "owner"):
		return entity.RoleOwner
	case strings.Contains(lower, "admin"):
		return entity.RoleAdmin
	default:
		return entity.RoleMember
	}
}

// removeFold drops every case-insensitive occurrence of sub.
func removeFold(text, sub string) string {
	if sub == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(sub))
	return re.ReplaceAllString(text, " ")
}
