package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

const (
	PlaceholderCompany         = "Company"
	PlaceholderRole            = "Role"
	PlaceholderRecruiterName   = "RecruiterName"
	PlaceholderMyName          = "MyName"
	PlaceholderRecruiterEmail  = "recruiterEmail"
	PlaceholderLinkedinProfile = "linkedinProfile"
	PlaceholderNotes           = "notes"
	PlaceholderContactStatus   = "contactStatus"
)

// ValidPlaceholders is the whitelist, in the order shown to users.
var ValidPlaceholders = []string{
	PlaceholderCompany,
	PlaceholderRole,
	PlaceholderRecruiterName,
	PlaceholderMyName,
	PlaceholderRecruiterEmail,
	PlaceholderLinkedinProfile,
	PlaceholderNotes,
	PlaceholderContactStatus,
}

var (
	placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)
	validPlaceholder   = func() map[string]bool {
		m := make(map[string]bool, len(ValidPlaceholders))
		for _, p := range ValidPlaceholders {
			m[p] = true
		}
		return m
	}()
)

func IsValidPlaceholder(name string) bool {
	return validPlaceholder[name]
}

// ValidatePlaceholders checks brace balance, empty tokens and unknown names in text.
// field names the input being checked, e.g. "subject".
func ValidatePlaceholders(field, text string) []ValidationError {
	var errs []ValidationError
	if text == "" {
		return nil
	}

	if strings.Contains(text, "{{") || strings.Contains(text, "}}") {
		errs = append(errs, ValidationError{field, "double braces not allowed"})
	}

	if !bracesBalanced(text) {
		errs = append(errs, ValidationError{field, "unmatched braces in placeholders"})
	}

	var unknown []string
	seen := map[string]bool{}
	emptyFound := false
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if strings.TrimSpace(name) == "" {
			emptyFound = true
			continue
		}
		if !validPlaceholder[name] && !seen[name] {
			seen[name] = true
			unknown = append(unknown, name)
		}
	}
	if emptyFound {
		errs = append(errs, ValidationError{field, "empty placeholder {} not allowed"})
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs = append(errs, ValidationError{
			Field: field,
			Message: "invalid placeholders found: " + strings.Join(unknown, ", ") +
				". Valid placeholders are: " + strings.Join(ValidPlaceholders, ", "),
		})
	}
	return errs
}

// bracesBalanced rejects nesting, stray closers and unclosed openers.
func bracesBalanced(text string) bool {
	open := false
	for _, r := range text {
		switch r {
		case '{':
			if open {
				return false
			}
			open = true
		case '}':
			if !open {
				return false
			}
			open = false
		}
	}
	return !open
}

// valueBraces keeps substituted values from introducing new tokens.
var valueBraces = strings.NewReplacer("{", "(", "}", ")")

// Resolve substitutes {Name} tokens from values. Whitelisted names without a
// value become [Name]; any other token is left as written. Braces inside a
// value are written as parentheses, so resolving the result again is a no-op.
func Resolve(text string, values map[string]string) string {
	if text == "" {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := token[1 : len(token)-1]
		if v, ok := values[name]; ok {
			return valueBraces.Replace(v)
		}
		if validPlaceholder[name] {
			return "[" + name + "]"
		}
		return token
	})
}

// RecruiterContext maps a recruiter and the sender's name onto placeholder values.
// Empty fields are left out so they resolve to the bracketed fallback.
func RecruiterContext(r *entity.Recruiter, myName string) map[string]string {
	values := map[string]string{}
	put := func(k, v string) {
		if strings.TrimSpace(v) != "" {
			values[k] = v
		}
	}
	put(PlaceholderMyName, myName)
	if r == nil {
		return values
	}
	put(PlaceholderCompany, r.CompanyName)
	put(PlaceholderRole, r.JobRole)
	put(PlaceholderRecruiterName, r.RecruiterName)
	put(PlaceholderRecruiterEmail, r.Email)
	put(PlaceholderLinkedinProfile, r.LinkedinProfile)
	put(PlaceholderNotes, r.Notes)
	put(PlaceholderContactStatus, string(r.Status))
	return values
}
