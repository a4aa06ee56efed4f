package entity

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Member struct {
	ID        string
	TeamID    string
	Email     string
	Name      string
	Role      Role
	JoinedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParseRole is case-insensitive; anything unknown is a plain member.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOwner:
		return RoleOwner
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleMember
	}
}

var localPartSeparators = regexp.MustCompile(`[._-]+`)

var titleCaser = cases.Title(language.Und)

// NameFromEmail turns "john.doe@x.com" into "John Doe".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	parts := localPartSeparators.Split(local, -1)

	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, titleCaser.String(strings.ToLower(p)))
	}
	return strings.Join(words, " ")
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
