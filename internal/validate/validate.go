// Package validate holds the per-field stage validators. Every validator is
// a pure function over raw input; it performs no I/O and consults no stored
// state. Composition and ordering of rejections belong to the stage
// controller.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
)

// Result is the outcome of a single field validation. Reason is user-facing
// and only set on rejection.
type Result struct {
	OK     bool
	Reason string
}

func accept() Result              { return Result{OK: true} }
func reject(reason string) Result { return Result{Reason: reason} }

var (
	// PAN accepts the standard format plus a deliberately permissive
	// secondary format with three digits and two trailing letters. Both must
	// be kept; collapsing to the standard pattern rejects cards the remote
	// service accepts.
	panStandard  = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
	panSecondary = regexp.MustCompile(`^[A-Z]{5}[0-9]{3}[A-Z]{2}$`)

	upiPattern = regexp.MustCompile(`^[\w.\-_]{2,256}@[A-Za-z]{2,64}$`)
)

// Aadhar checks a raw Aadhaar number. Rules are order-sensitive; the first
// failing rule wins.
func Aadhar(raw string) Result {
	if raw == "" {
		return reject("Aadhar number is required")
	}
	if len(raw) != 12 {
		return reject("Aadhar number must be exactly 12 digits")
	}
	if !govalidator.IsNumeric(raw) {
		return reject("Aadhar number must contain only digits")
	}
	if raw[0] == '0' || raw[0] == '1' {
		return reject("Enter a valid Aadhar number")
	}
	return accept()
}

// Phone checks a raw mobile number: ten digits, first digit 3-9.
func Phone(raw string) Result {
	if raw == "" {
		return reject("Phone number is required")
	}
	if len(raw) != 10 {
		return reject("Phone number must be exactly 10 digits")
	}
	if !govalidator.IsNumeric(raw) {
		return reject("Phone number must contain only digits")
	}
	if raw[0] == '0' || raw[0] == '1' || raw[0] == '2' {
		return reject("Enter a valid phone number")
	}
	return accept()
}

// Age checks a raw age string: integral and within [18,100].
func Age(raw string) Result {
	if raw == "" {
		return reject("Age is required")
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return reject("Age must be a number")
	}
	if age < 18 || age > 100 {
		return reject("Age must be between 18 and 100")
	}
	return accept()
}

// Required rejects values that are empty after trimming. The field name is
// interpolated into the user-facing reason.
func Required(field, raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return reject(field + " is required")
	}
	return accept()
}

// PAN checks a raw PAN, case-insensitively.
func PAN(raw string) Result {
	if raw == "" {
		return reject("PAN number is required")
	}
	if len(raw) != 10 {
		return reject("PAN number must be exactly 10 characters")
	}
	normalized := strings.ToUpper(raw)
	if !panStandard.MatchString(normalized) && !panSecondary.MatchString(normalized) {
		return reject("Enter a valid PAN number")
	}
	return accept()
}

// UPI checks an optional UPI handle. Empty input is accepted; non-empty
// input must match the handle@provider shape.
func UPI(raw string) Result {
	if raw == "" {
		return accept()
	}
	if !upiPattern.MatchString(raw) {
		return reject("Enter a valid UPI ID")
	}
	return accept()
}

// SeedEmail guards the run-creation boundary against structurally broken
// seeds. The seed itself is produced upstream and is otherwise read-only.
func SeedEmail(raw string) Result {
	if raw == "" {
		return reject("Email is required")
	}
	if !govalidator.IsEmail(raw) {
		return reject("Enter a valid email address")
	}
	return accept()
}
