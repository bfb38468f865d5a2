// Package matching ranks directory users against a project description.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"buddy-backends/internal/llm"
	"buddy-backends/internal/store"
)

const bioPreviewLen = 100

var (
	ErrEmptyDescription = errors.New("projectDescription required")
	ErrNoDirectory      = errors.New("user directory not initialized")
	ErrLoadUsers        = errors.New("failed to load users")
	ErrMatching         = errors.New("failed to process skill matching")
)

// Directory lists candidate users. store.Store implements it.
type Directory interface {
	ListUsers(ctx context.Context) ([]store.User, error)
}

type Match struct {
	Email  string  `json:"email"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type Result struct {
	Matches []Match `json:"matches"`
}

// Candidate is a normalized directory entry as presented to the model.
type Candidate struct {
	Name       string
	Email      string
	Skills     []string
	Experience int
	Bio        string
}

type Matcher struct {
	dir Directory
	llm llm.Client
	log *slog.Logger
}

// New builds a Matcher. A nil dir makes every call fail with ErrNoDirectory.
func New(dir Directory, client llm.Client, log *slog.Logger) *Matcher {
	return &Matcher{dir: dir, llm: client, log: log}
}

// MatchSkills asks the model for the best three candidates scoring at least 0.5.
func (m *Matcher) MatchSkills(ctx context.Context, description string) (Result, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Result{}, ErrEmptyDescription
	}
	if m.dir == nil {
		return Result{}, ErrNoDirectory
	}

	users, err := m.dir.ListUsers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrLoadUsers, err)
	}
	candidates := Normalize(users)
	if len(candidates) == 0 {
		return Result{Matches: []Match{}}, nil
	}

	reply, err := m.llm.Complete(ctx, []llm.Message{llm.User(buildPrompt(description, candidates))},
		llm.Options{MaxTokens: 800, Temperature: 0, TopP: 1.0})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMatching, err)
	}

	res, err := parse(reply)
	if err != nil {
		m.log.Warn("skill match reply not parseable", "err", err, "reply", reply)
		return Result{}, fmt.Errorf("%w: %w", ErrMatching, err)
	}
	return res, nil
}

// Normalize drops users without an email and lower-cases emails, skills and bios.
// Names default to the email local part.
func Normalize(users []store.User) []Candidate {
	out := make([]Candidate, 0, len(users))
	for _, u := range users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			continue
		}
		name := strings.TrimSpace(u.Name)
		if name == "" {
			name = localPart(email)
		}
		skills := make([]string, 0, len(u.Skills))
		for _, s := range u.Skills {
			skills = append(skills, strings.ToLower(strings.TrimSpace(s)))
		}
		out = append(out, Candidate{
			Name:       name,
			Email:      email,
			Skills:     skills,
			Experience: u.Experience,
			Bio:        strings.ToLower(u.Bio),
		})
	}
	return out
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func candidateLine(c Candidate) string {
	title := cases.Title(language.Und)
	skills := make([]string, len(c.Skills))
	for i, s := range c.Skills {
		skills[i] = title.String(s)
	}
	skillList := strings.Join(skills, ", ")
	if skillList == "" {
		skillList = "None"
	}

	bio := []rune(c.Bio)
	preview := string(bio)
	if len(bio) > bioPreviewLen {
		preview = string(bio[:bioPreviewLen]) + "..."
	}

	return fmt.Sprintf("- %s (%s)\n  Skills: %s\n  Experience: %d years\n  Bio: %s",
		c.Name, localPart(c.Email), skillList, c.Experience, preview)
}

func buildPrompt(description string, candidates []Candidate) string {
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = candidateLine(c)
	}
	return fmt.Sprintf(promptTemplate, description, strings.Join(lines, "\n"))
}

const promptTemplate = `
Extract key technical skills and role level from this project:

"%s"

Then rank these candidates by fit.

CANDIDATES:
%s

RULES:
- Match exact and synonym skills (e.g., "React" = "React.js")
- Prefer higher experience for senior roles
- Use bio for context
- Score 0.00-1.00

RETURN ONLY JSON:
{
  "matches": [
    { "email": "alice@example.com", "score": 0.94, "reason": "React + Firebase expert, 5y exp" }
  ]
}
Top 3 only. Score >= 0.50.
`

func parse(reply string) (Result, error) {
	clean := strings.ReplaceAll(reply, "```json", "")
	clean = strings.TrimSpace(strings.ReplaceAll(clean, "```", ""))

	var res Result
	if err := json.Unmarshal([]byte(clean), &res); err != nil {
		return Result{}, err
	}
	if res.Matches == nil {
		res.Matches = []Match{}
	}
	return res, nil
}
