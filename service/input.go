package service

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"

	"cpa-savings/domain"
)

// Form field names shared by the page, the API and the lead payload.
const (
	FieldEmployees     = "employees"
	FieldMonthlyCost   = "monthlyCost"
	FieldPenaltyFees   = "penaltyFees"
	FieldSoftwareSpend = "softwareSpend"
	FieldHoursSpent    = "hoursSpent"

	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
)

// CoercionMode decides what happens to a numeric field that cannot be used
// as entered.
type CoercionMode string

const (
	// CoerceStrict rejects the submission with a message per field.
	CoerceStrict CoercionMode = "strict"
	// CoerceLenient replaces unusable values with zero and clamps values to
	// the submission limits.
	CoerceLenient CoercionMode = "lenient"
)

func ParseCoercionMode(s string) (CoercionMode, error) {
	switch CoercionMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", CoerceStrict:
		return CoerceStrict, nil
	case CoerceLenient:
		return CoerceLenient, nil
	}
	return "", fmt.Errorf("unknown coercion mode %q (want strict or lenient)", s)
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed to parse.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Message returns the error for field, or "" when the field is valid.
func (e *ValidationError) Message(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ParseCalculatorInput turns raw form text into a CalculatorInput. In strict
// mode the error is a *ValidationError; in lenient mode it is always nil.
func ParseCalculatorInput(fields map[string]string, mode CoercionMode) (domain.CalculatorInput, error) {
	verr := &ValidationError{}
	p := numberParser{fields: fields, lenient: mode == CoerceLenient, errs: verr}

	employees := p.number(FieldEmployees, "Number of employees", MaxEmployees)
	if math.Trunc(employees) != employees {
		if p.lenient {
			employees = math.Trunc(employees)
		} else {
			verr.add(FieldEmployees, "Number of employees must be a whole number")
		}
	}

	input := domain.CalculatorInput{
		Employees:     int(employees),
		MonthlyCost:   p.number(FieldMonthlyCost, "Monthly cost", MaxMonthlyCost),
		PenaltyFees:   p.number(FieldPenaltyFees, "Penalty fees", MaxPenaltyFees),
		SoftwareSpend: p.number(FieldSoftwareSpend, "Software spend", MaxSoftwareSpend),
		HoursSpent:    p.number(FieldHoursSpent, "Hours spent", MaxHoursSpent),
	}

	if err := verr.orNil(); err != nil {
		return domain.CalculatorInput{}, err
	}
	return input, nil
}

type numberParser struct {
	fields  map[string]string
	lenient bool
	errs    *ValidationError
}

// number parses one field. Thousands separators and a leading "$" are
// accepted, since visitors paste figures from invoices.
func (p numberParser) number(field, label string, limit float64) float64 {
	raw := strings.TrimSpace(p.fields[field])
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")

	if raw == "" {
		if !p.lenient {
			p.errs.add(field, label+" is required")
		}
		return 0
	}

	v, err := strconv.ParseFloat(raw, 64)
	switch {
	case err != nil || math.IsNaN(v) || math.IsInf(v, 0):
		if !p.lenient {
			p.errs.add(field, label+" must be a number")
		}
		return 0
	case v < 0:
		if !p.lenient {
			p.errs.add(field, label+" cannot be negative")
		}
		return 0
	case v > limit:
		if !p.lenient {
			p.errs.add(field, fmt.Sprintf("%s cannot exceed %s", label, strconv.FormatFloat(limit, 'f', -1, 64)))
			return 0
		}
		return limit
	}
	return v
}

// ParseIdentity reads the optional contact fields. provided is false when
// all three are blank, meaning the visitor did not ask to be contacted.
func ParseIdentity(fields map[string]string) (identity domain.Identity, provided bool, err error) {
	identity = domain.Identity{
		FirstName: strings.TrimSpace(fields[FieldFirstName]),
		LastName:  strings.TrimSpace(fields[FieldLastName]),
		Email:     strings.TrimSpace(fields[FieldEmail]),
	}
	if identity.FirstName == "" && identity.LastName == "" && identity.Email == "" {
		return domain.Identity{}, false, nil
	}

	verr := &ValidationError{}
	if identity.FirstName == "" {
		verr.add(FieldFirstName, "First name is required")
	}
	if identity.LastName == "" {
		verr.add(FieldLastName, "Last name is required")
	}
	if !ValidEmail(identity.Email) {
		verr.add(FieldEmail, "Please enter a valid email address")
	}
	if err := verr.orNil(); err != nil {
		return domain.Identity{}, true, err
	}
	return identity, true, nil
}

// ValidEmail accepts a bare address (no display name) whose domain has at
// least one dot.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domainPart := s[at+1:]
	dot := strings.LastIndex(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
