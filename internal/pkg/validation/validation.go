// internal/pkg/validation/validation.go
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	pricePattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	promoPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

	fieldValidator = validator.New()
)

// Rule describes the checks applied to a single field
type Rule struct {
	Required       bool
	MinLength      int
	MaxLength      int
	Pattern        *regexp.Regexp
	Email          bool
	Phone          bool
	Price          bool
	URL            bool
	PositiveNumber bool
	Integer        bool
	Custom         func(value interface{}) string
}

// Schema maps field names to rules
type Schema map[string]Rule

// Result collects human-readable messages; it never carries a Go error
type Result struct {
	IsValid bool                `json:"is_valid"`
	Errors  []string            `json:"errors"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// Validator applies a schema to input maps
type Validator struct {
	schema Schema
}

// New creates a validator for the schema
func New(schema Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate checks every field of the schema in a stable order
func (v *Validator) Validate(data map[string]interface{}) Result {
	result := Result{IsValid: true, Errors: []string{}, Fields: map[string][]string{}}

	names := make([]string, 0, len(v.schema))
	for name := range v.schema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fieldErrors := v.ValidateField(name, data[name])
		if len(fieldErrors) > 0 {
			result.IsValid = false
			result.Errors = append(result.Errors, fieldErrors...)
			result.Fields[name] = fieldErrors
		}
	}

	return result
}

// ValidateField checks one value; unknown fields produce no errors
func (v *Validator) ValidateField(name string, value interface{}) []string {
	rule, ok := v.schema[name]
	if !ok {
		return nil
	}
	return checkRule(value, rule)
}

func checkRule(value interface{}, rule Rule) []string {
	errs := []string{}

	if isEmpty(value) {
		if rule.Required {
			errs = append(errs, i18n.T("errors.required"))
		}
		return errs
	}

	text, isText := value.(string)

	if isText && rule.MinLength > 0 && utf8.RuneCountInString(text) < rule.MinLength {
		errs = append(errs, i18n.T("validation.minLength", i18n.Params{"min": rule.MinLength}))
	}

	if isText && rule.MaxLength > 0 && utf8.RuneCountInString(text) > rule.MaxLength {
		errs = append(errs, i18n.T("validation.maxLength", i18n.Params{"max": rule.MaxLength}))
	}

	if isText && rule.Email && !IsEmail(text) {
		errs = append(errs, i18n.T("errors.invalidEmail"))
	}

	if isText && rule.Phone && !IsPhone(text) {
		errs = append(errs, i18n.T("errors.invalidPhone"))
	}

	if isText && rule.URL && !IsURL(text) {
		errs = append(errs, i18n.T("validation.invalidURL"))
	}

	if rule.Price && !IsPrice(value) {
		errs = append(errs, i18n.T("errors.invalidPrice"))
	}

	if rule.PositiveNumber {
		if n, ok := toFloat(value); !ok || n <= 0 {
			errs = append(errs, i18n.T("validation.positiveNumber"))
		}
	}

	if rule.Integer && !isInteger(value) {
		errs = append(errs, i18n.T("validation.integer"))
	}

	if isText && rule.Pattern != nil && !rule.Pattern.MatchString(text) {
		errs = append(errs, i18n.T("validation.pattern"))
	}

	if rule.Custom != nil {
		if msg := rule.Custom(value); msg != "" {
			errs = append(errs, msg)
		}
	}

	return errs
}

// IsEmail reports whether the value is a syntactically valid email address
func IsEmail(value string) bool {
	return fieldValidator.Var(value, "required,email") == nil
}

// IsPhone reports whether the value looks like an international phone number
func IsPhone(value string) bool {
	return phonePattern.MatchString(strings.ReplaceAll(value, " ", ""))
}

// IsURL reports whether the value is an absolute URL
func IsURL(value string) bool {
	if fieldValidator.Var(value, "required,url") != nil {
		return false
	}
	_, err := url.ParseRequestURI(value)
	return err == nil
}

// IsPrice accepts positive amounts with at most two fraction digits
func IsPrice(value interface{}) bool {
	switch v := value.(type) {
	case string:
		if !pricePattern.MatchString(v) {
			return false
		}
		n, err := strconv.ParseFloat(v, 64)
		return err == nil && n > 0
	case decimal.Decimal:
		return v.IsPositive() && v.Equal(v.Round(2))
	default:
		n, ok := toFloat(value)
		return ok && n > 0
	}
}

// IsRequired mirrors the required rule for callers outside a schema
func IsRequired(value interface{}) bool {
	return !isEmpty(value)
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	case decimal.Decimal:
		return v.IsZero()
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	}
	return 0, false
}

func isInteger(value interface{}) bool {
	switch v := value.(type) {
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return err == nil
	case int, int64:
		return true
	case float64:
		return v == float64(int64(v))
	case decimal.Decimal:
		return v.IsInteger()
	}
	return false
}

// Schemas used by the profile, checkout and admin views
var (
	UserSchema = Schema{
		"firstName": {Required: true, MinLength: 2, MaxLength: 50},
		"lastName":  {Required: true, MinLength: 2, MaxLength: 50},
		"email":     {Required: true, Email: true},
		"phone":     {Phone: true},
	}

	GameSchema = Schema{
		"name":        {Required: true, MinLength: 2, MaxLength: 100},
		"description": {MaxLength: 500},
		"image_url":   {Required: true, URL: true},
	}

	CategorySchema = Schema{
		"name":   {Required: true, MinLength: 2, MaxLength: 50},
		"gameId": {Required: true},
	}

	ProductSchema = Schema{
		"name":        {Required: true, MinLength: 2, MaxLength: 100},
		"description": {MaxLength: 1000},
		"price":       {Required: true, Price: true},
		"image_url":   {Required: true, URL: true},
		"categoryId":  {Required: true},
		"gameId":      {Required: true},
	}

	PromoCodeSchema = Schema{
		"code": {Required: true, MinLength: 3, MaxLength: 20, Pattern: promoPattern},
	}

	PaymentSchema = Schema{
		"amount": {Required: true, PositiveNumber: true},
		"method": {Required: true},
	}
)

// Err adapts a failed result into an error for callers that need one
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return fmt.Errorf("validation failed: %s", strings.Join(r.Errors, "; "))
}
