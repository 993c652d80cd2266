package core

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

const (
	FieldCreditScore  = "credit_score"
	FieldGender       = "gender"
	FieldAge          = "age"
	FieldBalance      = "balance"
	FieldProducts     = "products"
	FieldHasCard      = "has_card"
	FieldTenure       = "tenure"
	FieldActiveMember = "active_member"
	FieldSalary       = "salary"
	FieldCountry      = "country"
)

// The prediction form does not collect a product count, the models were
// trained with it in the fifth slot.
const defaultProducts = 3

const NumFeatures = 12

var requiredFields = []string{
	FieldCreditScore,
	FieldGender,
	FieldAge,
	FieldBalance,
	FieldHasCard,
	FieldTenure,
	FieldActiveMember,
	FieldSalary,
	FieldCountry,
}

// RawFields holds untyped form values keyed by field name: strings, JSON
// numbers, booleans or nil.
type RawFields map[string]any

// FeatureRecord is the customer row in model input order.
type FeatureRecord struct {
	CreditScore  float64
	Gender       float64
	Age          float64
	Balance      float64
	Products     float64
	HasCard      float64
	Tenure       float64
	ActiveMember float64
	Salary       float64
	IsFrance     float64
	IsGermany    float64
	IsSpain      float64
}

func (r FeatureRecord) Vector() []float64 {
	return []float64{
		r.CreditScore,
		r.Gender,
		r.Age,
		r.Balance,
		r.Products,
		r.HasCard,
		r.Tenure,
		r.ActiveMember,
		r.Salary,
		r.IsFrance,
		r.IsGermany,
		r.IsSpain,
	}
}

type Country string

const (
	France  Country = "FRA"
	Germany Country = "DEU"
	Spain   Country = "ESP"
)

func oneHotCountry(code string) (float64, float64, float64) {
	switch Country(code) {
	case France:
		return 1, 0, 0
	case Germany:
		return 0, 1, 0
	case Spain:
		return 0, 0, 1
	default:
		slog.Warn("unrecognized country code, encoding all country flags as zero", "country", code)
		return 0, 0, 0
	}
}

// FieldError reports a missing or malformed form field.
type FieldError struct {
	Field   string
	Missing []string
	Reason  string

	kind  error
	cause error
}

func (e *FieldError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%v: %s", e.kind, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%v: field %s: %s", e.kind, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func malformed(field, reason string, cause error) error {
	return &FieldError{Field: field, Reason: reason, kind: ErrMalformedInput, cause: cause}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// MissingFields returns the required fields that are absent or blank, in form
// order.
func (raw RawFields) MissingFields() []string {
	var missing []string
	for _, field := range requiredFields {
		if stringValue(raw[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func (raw RawFields) number(field string) (float64, error) {
	s := stringValue(raw[field])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, malformed(field, "expected a number", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed(field, "expected a finite number", nil)
	}
	if v < 0 {
		return 0, malformed(field, "expected a non-negative number", nil)
	}
	return v, nil
}

func (raw RawFields) flag(field string) float64 {
	if stringValue(raw[field]) == "1" {
		return 1
	}
	return 0
}

// gender follows the label encoding of the training set: Female=0, Male=1. The
// form select submits "1" for Female.
func (raw RawFields) gender() float64 {
	s := stringValue(raw[FieldGender])
	switch strings.ToLower(s) {
	case "female":
		return 0
	case "male":
		return 1
	}
	if s == "1" {
		return 0
	}
	return 1
}

// Encode builds the feature record for one submission. It fails with
// ErrMissingInput when a required field is blank and ErrMalformedInput when a
// numeric field does not parse.
func Encode(raw RawFields) (FeatureRecord, error) {
	if missing := raw.MissingFields(); len(missing) > 0 {
		return FeatureRecord{}, &FieldError{Missing: missing, kind: ErrMissingInput}
	}

	var (
		rec FeatureRecord
		err error
	)

	numbers := []struct {
		field string
		dst   *float64
	}{
		{FieldCreditScore, &rec.CreditScore},
		{FieldAge, &rec.Age},
		{FieldBalance, &rec.Balance},
		{FieldTenure, &rec.Tenure},
		{FieldSalary, &rec.Salary},
	}
	for _, n := range numbers {
		if *n.dst, err = raw.number(n.field); err != nil {
			return FeatureRecord{}, err
		}
	}

	rec.Products = defaultProducts
	if stringValue(raw[FieldProducts]) != "" {
		if rec.Products, err = raw.number(FieldProducts); err != nil {
			return FeatureRecord{}, err
		}
	}

	rec.Gender = raw.gender()
	rec.HasCard = raw.flag(FieldHasCard)
	rec.ActiveMember = raw.flag(FieldActiveMember)
	rec.IsFrance, rec.IsGermany, rec.IsSpain = oneHotCountry(stringValue(raw[FieldCountry]))

	return rec, nil
}
