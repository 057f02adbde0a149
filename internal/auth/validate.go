package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const minSignupAge = 18

var (
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	ssnRegex   = regexp.MustCompile(`^\d{9}$`)
	zipRegex   = regexp.MustCompile(`^\d{5}$`)
)

// stateCodes are the USPS two-letter abbreviations the signup form offers.
var stateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "DC": true, "FL": true, "GA": true, "HI": true,
	"ID": true, "IL": true, "IN": true, "IA": true, "KS": true, "KY": true,
	"LA": true, "ME": true, "MD": true, "MA": true, "MI": true, "MN": true,
	"MS": true, "MO": true, "MT": true, "NE": true, "NV": true, "NH": true,
	"NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true,
	"TN": true, "TX": true, "UT": true, "VT": true, "VA": true, "WA": true,
	"WV": true, "WI": true, "WY": true,
}

// FieldError reports a validation failure for a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every offending field so the client can surface
// them all at once instead of one per round trip.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, len(v))
	for i, fe := range v {
		fields[i] = fe.Field
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// NormalizeEmail applies the canonical form used everywhere email is
// compared or stored: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail checks format on an already-normalized address.
func validateEmail(v *ValidationErrors, email string) {
	if email == "" {
		v.add("email", "email is required")
		return
	}
	if len(email) > 254 {
		v.add("email", "email must be at most 254 characters")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		v.add("email", "invalid email format")
	}
}

// validatePassword enforces the same rules the signup form shows the user.
// The two rule sets drifted once (complexity was client-side only); keeping
// the full set here means a raw API client gets the same contract.
func validatePassword(v *ValidationErrors, password string) {
	if password == "" {
		v.add("password", "password is required")
		return
	}
	if len(password) < 8 {
		v.add("password", "password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		v.add("password", "password must contain an uppercase letter, a lowercase letter, and a digit")
	}
}

// ValidateSignup checks every field of the registration payload and returns
// all failures together. Nothing touches a store before this passes.
func ValidateSignup(in SignupInput) ValidationErrors {
	var v ValidationErrors

	validateEmail(&v, NormalizeEmail(in.Email))
	validatePassword(&v, in.Password)

	if strings.TrimSpace(in.FirstName) == "" {
		v.add("first_name", "first name is required")
	} else if len(in.FirstName) > 100 {
		v.add("first_name", "first name must be at most 100 characters")
	}

	if strings.TrimSpace(in.LastName) == "" {
		v.add("last_name", "last name is required")
	} else if len(in.LastName) > 100 {
		v.add("last_name", "last name must be at most 100 characters")
	}

	if in.Phone == "" {
		v.add("phone", "phone is required")
	} else if !phoneRegex.MatchString(in.Phone) {
		v.add("phone", "invalid phone number")
	}

	validateDateOfBirth(&v, in.DateOfBirth)

	if in.SSN == "" {
		v.add("ssn", "ssn is required")
	} else if !ssnRegex.MatchString(in.SSN) {
		v.add("ssn", "ssn must be exactly 9 digits")
	}

	if strings.TrimSpace(in.Address) == "" {
		v.add("address", "address is required")
	}

	if strings.TrimSpace(in.City) == "" {
		v.add("city", "city is required")
	}

	if !stateCodes[strings.ToUpper(in.State)] {
		v.add("state", "invalid state code")
	}

	if !zipRegex.MatchString(in.ZipCode) {
		v.add("zip_code", "zip code must be exactly 5 digits")
	}

	return v
}

func validateDateOfBirth(v *ValidationErrors, dob string) {
	if dob == "" {
		v.add("date_of_birth", "date of birth is required")
		return
	}

	parsed, err := time.Parse("2006-01-02", dob)
	if err != nil {
		v.add("date_of_birth", "date of birth must be in YYYY-MM-DD format")
		return
	}

	now := time.Now()
	if parsed.After(now) {
		v.add("date_of_birth", "date of birth cannot be in the future")
		return
	}

	// Calendar age, not a 365-day approximation
	age := now.Year() - parsed.Year()
	if now.Month() < parsed.Month() || (now.Month() == parsed.Month() && now.Day() < parsed.Day()) {
		age--
	}
	if age < minSignupAge {
		v.add("date_of_birth", fmt.Sprintf("you must be at least %d years old", minSignupAge))
	}
}
