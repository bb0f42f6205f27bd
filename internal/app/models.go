package app

import (
	"fmt"
	"strings"
	"time"
)

// Role is the privilege tier the backend granted to an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes a role string from user input or the wire.
// Unknown roles are rejected rather than defaulted.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is the account profile returned by the auth endpoints and persisted
// as the local session snapshot.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Validate reports whether the profile is complete enough to act as a
// signed-in identity: an id, at least one of username or email, and a
// known role.
func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("profile missing id")
	}
	if u.Username == "" && u.Email == "" {
		return fmt.Errorf("profile missing username and email")
	}
	switch u.Role {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("unknown role %q", u.Role)
	}
}

// DisplayName prefers the username and falls back to the email.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// ArticleStatus tracks a document through the analysis pipeline.
type ArticleStatus string

const (
	StatusProcessing ArticleStatus = "PROCESSING"
	StatusCompleted  ArticleStatus = "COMPLETED"
	StatusFailed     ArticleStatus = "FAILED"
)

// LiteArticle is the list projection of an article: enough for a table
// row without the analysis payload.
type LiteArticle struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Owner  string        `json:"owner"`
	Status ArticleStatus `json:"status"`
}

// AnalysisResult is the structured output the pipeline extracts from a
// document once processing completes.
type AnalysisResult struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Keywords   []string `json:"keywords"`
	SEOTitle   string   `json:"seoTitle"`
	Categories []string `json:"categories"`
}

// Article is the full document record. Output is nil until the pipeline
// has produced a result.
type Article struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Owner     string          `json:"owner"`
	Language  string          `json:"language"`
	Status    ArticleStatus   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Output    *AnalysisResult `json:"outputJson"`
}

// BestTitle picks the stored title, then the generated one, then a
// placeholder, in that order.
func (a Article) BestTitle() string {
	if a.Title != "" {
		return a.Title
	}
	if a.Output != nil && a.Output.Title != "" {
		return a.Output.Title
	}
	return "Untitled Document"
}

// GlobalStats is the admin dashboard headline counters.
type GlobalStats struct {
	Users    int `json:"users"`
	Articles int `json:"articles"`
}

// ChartPoint is one bar of the daily uploads chart.
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}
