package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

const (
	minNameLength     = 2
	maxNameLength     = 100
	minPasswordLength = 8
)

// Indian mobile numbers: ten digits, first digit 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// NormalizeSubmitLeadInput trims surrounding whitespace and collapses inner runs in the name.
func NormalizeSubmitLeadInput(input SubmitLeadInput) SubmitLeadInput {
	input.Name = strings.Join(strings.Fields(input.Name), " ")
	input.Mobile = strings.TrimSpace(input.Mobile)
	input.City = strings.TrimSpace(input.City)
	input.Timeline = strings.TrimSpace(input.Timeline)
	return input
}

func ValidateSubmitLeadInput(input SubmitLeadInput) ValidationErrors {
	var errors ValidationErrors

	nameLen := utf8.RuneCountInString(input.Name)
	if nameLen == 0 {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if nameLen < minNameLength {
		errors = append(errors, ValidationError{"name", "must have at least 2 characters"})
	} else if nameLen > maxNameLength {
		errors = append(errors, ValidationError{"name", "must not exceed 100 characters"})
	}

	if input.Mobile == "" {
		errors = append(errors, ValidationError{"mobile", "is required"})
	} else if !IsValidMobile(input.Mobile) {
		errors = append(errors, ValidationError{"mobile", "must be a valid 10-digit mobile number"})
	}

	if input.City == "" {
		errors = append(errors, ValidationError{"city", "is required"})
	} else if !entity.IsKnownCity(input.City) {
		errors = append(errors, ValidationError{"city", "is not served"})
	}

	if input.Timeline == "" {
		errors = append(errors, ValidationError{"timeline", "is required"})
	} else if !entity.IsKnownTimeline(input.Timeline) {
		errors = append(errors, ValidationError{"timeline", "is not a valid option"})
	}

	return errors
}

func IsValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

func validateNewPassword(password string) ValidationErrors {
	var errors ValidationErrors
	if strings.TrimSpace(password) == "" {
		errors = append(errors, ValidationError{"newPassword", "is required"})
	} else if utf8.RuneCountInString(password) < minPasswordLength {
		errors = append(errors, ValidationError{"newPassword", "must have at least 8 characters"})
	}
	return errors
}
