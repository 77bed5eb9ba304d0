package leadimport

import "strings"

// Logical lead fields a column may be mapped to, in display order.
const (
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldCountry     = "country"
	FieldTimezone    = "timezone"
	FieldIncomeRange = "income_range"
	FieldAgent       = "agent"
	FieldComment     = "comment"
)

var allFields = []string{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldCountry,
	FieldTimezone,
	FieldIncomeRange,
	FieldAgent,
	FieldComment,
}

var requiredFields = map[string]bool{
	FieldFullName: true,
	FieldEmail:    true,
	FieldPhone:    true,
}

// AllFields returns every mappable field in order.
func AllFields() []string {
	return append([]string(nil), allFields...)
}

// RequiredFields returns the fields that must be mapped, in order.
func RequiredFields() []string {
	var out []string
	for _, f := range allFields {
		if requiredFields[f] {
			out = append(out, f)
		}
	}
	return out
}

// OptionalFields is AllFields minus RequiredFields, order preserved.
func OptionalFields() []string {
	var out []string
	for _, f := range allFields {
		if !requiredFields[f] {
			out = append(out, f)
		}
	}
	return out
}

func IsField(name string) bool {
	for _, f := range allFields {
		if f == name {
			return true
		}
	}
	return false
}

// Mapping assigns a column name to each logical field. "" means unmapped.
type Mapping map[string]string

// columnAliases maps normalized header names to lead fields.
var columnAliases = map[string]string{
	"full_name":    FieldFullName,
	"fullname":     FieldFullName,
	"full name":    FieldFullName,
	"name":         FieldFullName,
	"lead":         FieldFullName,
	"lead name":    FieldFullName,
	"contact":      FieldFullName,
	"contact name": FieldFullName,

	"email":         FieldEmail,
	"e-mail":        FieldEmail,
	"email_address": FieldEmail,
	"email address": FieldEmail,
	"emailaddress":  FieldEmail,
	"mail":          FieldEmail,

	"phone":        FieldPhone,
	"phone number": FieldPhone,
	"phone_number": FieldPhone,
	"telephone":    FieldPhone,
	"tel":          FieldPhone,
	"mobile":       FieldPhone,
	"cell":         FieldPhone,

	"country":      FieldCountry,
	"country_code": FieldCountry,
	"nation":       FieldCountry,

	"timezone":  FieldTimezone,
	"time zone": FieldTimezone,
	"time_zone": FieldTimezone,
	"tz":        FieldTimezone,

	"income_range": FieldIncomeRange,
	"income range": FieldIncomeRange,
	"income":       FieldIncomeRange,
	"salary":       FieldIncomeRange,

	"agent":          FieldAgent,
	"assigned agent": FieldAgent,
	"assigned_to":    FieldAgent,
	"owner":          FieldAgent,
	"username":       FieldAgent,

	"comment":  FieldComment,
	"comments": FieldComment,
	"notes":    FieldComment,
	"note":     FieldComment,
	"remarks":  FieldComment,
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Trim(h, "\"'")
	return strings.Join(strings.Fields(h), " ")
}

// SuggestMapping guesses a mapping from header names. Each column is used at most
// once and the first matching column wins. Fields without a match are "".
func SuggestMapping(columns []string) Mapping {
	m := make(Mapping, len(allFields))
	for _, f := range allFields {
		m[f] = ""
	}
	for _, col := range columns {
		field, ok := columnAliases[normalizeHeader(col)]
		if !ok {
			continue
		}
		if m[field] == "" {
			m[field] = col
		}
	}
	return m
}
