package auth

import (
	"fmt"
	"testing"
	"time"
)

func validSignupInput() SignupInput {
	return SignupInput{
		Email:       "jane.doe@example.com",
		Password:    "Sup3rSecret",
		FirstName:   "Jane",
		LastName:    "Doe",
		Phone:       "+12025550147",
		DateOfBirth: "1990-05-10",
		SSN:         "123456789",
		Address:     "123 Main St",
		City:        "Springfield",
		State:       "IL",
		ZipCode:     "62704",
	}
}

func fieldErrors(errs ValidationErrors) map[string]bool {
	out := make(map[string]bool, len(errs))
	for _, fe := range errs {
		out[fe.Field] = true
	}
	return out
}

func TestValidateSignup_Valid(t *testing.T) {
	if errs := ValidateSignup(validSignupInput()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateSignup_FieldFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SignupInput)
		field  string
	}{
		{"missing email", func(in *SignupInput) { in.Email = "" }, "email"},
		{"malformed email", func(in *SignupInput) { in.Email = "not-an-email" }, "email"},
		{"missing password", func(in *SignupInput) { in.Password = "" }, "password"},
		{"short password", func(in *SignupInput) { in.Password = "Ab1" }, "password"},
		{"no uppercase", func(in *SignupInput) { in.Password = "alllower1" }, "password"},
		{"no digit", func(in *SignupInput) { in.Password = "NoDigitsHere" }, "password"},
		{"missing first name", func(in *SignupInput) { in.FirstName = "  " }, "first_name"},
		{"missing last name", func(in *SignupInput) { in.LastName = "" }, "last_name"},
		{"bad phone", func(in *SignupInput) { in.Phone = "555-0147" }, "phone"},
		{"phone leading zero", func(in *SignupInput) { in.Phone = "+0123456789" }, "phone"},
		{"missing dob", func(in *SignupInput) { in.DateOfBirth = "" }, "date_of_birth"},
		{"bad dob format", func(in *SignupInput) { in.DateOfBirth = "05/10/1990" }, "date_of_birth"},
		{"future dob", func(in *SignupInput) { in.DateOfBirth = "2999-01-01" }, "date_of_birth"},
		{"short ssn", func(in *SignupInput) { in.SSN = "12345" }, "ssn"},
		{"ssn with dashes", func(in *SignupInput) { in.SSN = "123-45-6789" }, "ssn"},
		{"missing address", func(in *SignupInput) { in.Address = "" }, "address"},
		{"missing city", func(in *SignupInput) { in.City = "" }, "city"},
		{"bad state", func(in *SignupInput) { in.State = "ZZ" }, "state"},
		{"long zip", func(in *SignupInput) { in.ZipCode = "627041234" }, "zip_code"},
		{"alpha zip", func(in *SignupInput) { in.ZipCode = "abcde" }, "zip_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignupInput()
			tt.mutate(&in)

			errs := ValidateSignup(in)
			if len(errs) == 0 {
				t.Fatal("expected a validation error, got none")
			}
			if !fieldErrors(errs)[tt.field] {
				t.Errorf("expected error on field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidateSignup_AgeGate(t *testing.T) {
	in := validSignupInput()

	// 17 years old today
	seventeen := time.Now().AddDate(-17, 0, 0)
	in.DateOfBirth = seventeen.Format("2006-01-02")
	errs := ValidateSignup(in)
	if !fieldErrors(errs)["date_of_birth"] {
		t.Errorf("17-year-old passed the age gate: %v", errs)
	}

	// 18th birthday today
	eighteen := time.Now().AddDate(-18, 0, 0)
	in.DateOfBirth = eighteen.Format("2006-01-02")
	if errs := ValidateSignup(in); fieldErrors(errs)["date_of_birth"] {
		t.Errorf("18-year-old failed the age gate: %v", errs)
	}
}

func TestValidateSignup_CollectsAllFields(t *testing.T) {
	errs := ValidateSignup(SignupInput{})
	got := fieldErrors(errs)
	for _, field := range []string{
		"email", "password", "first_name", "last_name", "phone",
		"date_of_birth", "ssn", "address", "city", "state", "zip_code",
	} {
		if !got[field] {
			t.Errorf("empty input missing error for %q", field)
		}
	}
}

func TestValidateSignup_StateCaseInsensitive(t *testing.T) {
	in := validSignupInput()
	in.State = "il"
	if errs := ValidateSignup(in); fieldErrors(errs)["state"] {
		t.Errorf("lowercase state code rejected: %v", errs)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"User@Example.com", "user@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
		{"already@example.com", "already@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var v ValidationErrors
	v.add("email", "email is required")
	v.add("ssn", "ssn must be exactly 9 digits")

	want := fmt.Sprintf("validation failed: %s, %s", "email", "ssn")
	if v.Error() != want {
		t.Errorf("Error() = %q, want %q", v.Error(), want)
	}
}
