package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateTemplateInput(input TemplateInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Subject) == "" {
		errors = append(errors, ValidationError{"subject", "is required"})
	} else {
		errors = append(errors, ValidatePlaceholders("subject", input.Subject)...)
	}

	if strings.TrimSpace(input.Body) == "" {
		errors = append(errors, ValidationError{"body", "is required"})
	} else {
		errors = append(errors, ValidatePlaceholders("body", input.Body)...)
	}

	if input.Category == "" {
		errors = append(errors, ValidationError{"category", "is required"})
	} else if !input.Category.Valid() {
		errors = append(errors, ValidationError{"category", "must be one of OUTREACH, FOLLOW_UP, REFERRAL, INTERVIEW, THANK_YOU"})
	}

	if input.Status != "" && !input.Status.Valid() {
		errors = append(errors, ValidationError{"status", "must be DRAFT, ACTIVE or ARCHIVED"})
	}

	return errors
}

func ValidateRecruiterInput(input RecruiterInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if !isValidEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.RecruiterName) == "" {
		errors = append(errors, ValidationError{"recruiterName", "is required"})
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		errors = append(errors, ValidationError{"companyName", "is required"})
	}
	if strings.TrimSpace(input.JobRole) == "" {
		errors = append(errors, ValidationError{"jobRole", "is required"})
	}

	if input.Status != "" && !input.Status.Valid() {
		errors = append(errors, ValidationError{"status", "must be PENDING, CONTACTED, RESPONDED, REJECTED or HIRED"})
	}

	return errors
}

func ValidateRegisterInput(input RegisterInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if !isValidEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if len(input.Password) < 8 {
		errors = append(errors, ValidationError{"password", "must have at least 8 characters"})
	}

	return errors
}

// isValidEmail accepts a bare address only, no display name.
func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
