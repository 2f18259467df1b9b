package manifest

import (
	"fmt"
	"strings"

	"github.com/heeddb/heed/internal/ddl"
	"github.com/heeddb/heed/internal/trigger"
)

// Validation error codes (E100-E199)
const (
	ErrGeneric        = "E100" // uncategorized rule violation
	ErrNameEmpty      = "E101" // registration name missing or malformed
	ErrEventInvalid   = "E102" // event outside the lifecycle set
	ErrTimingInvalid  = "E103" // timing not before/after/instead_of
	ErrEnabledInvalid = "E104" // enabled state unknown
	ErrCallbackEmpty  = "E105" // callback reference missing
	ErrTagUnknown     = "E106" // tag outside the command taxonomy
	ErrTagRepeated    = "E107" // same canonical tag listed twice
	ErrNameRepeated   = "E108" // duplicate name within one event
)

// ValidationError reports one semantic problem with a compiled
// manifest.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled registrations against semantic rules.
// Returns all errors found (does not fail-fast). On top of the
// structural rules every registration carries, it checks what the
// registration record cannot check alone: tag membership in the
// command taxonomy, tag duplication after canonicalization, and
// name collisions within an event across the whole batch. The last
// check matters when registrations from several sources are merged
// before an apply.
func Validate(regs []trigger.Registration) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(regs))
	for _, reg := range regs {
		field := fieldPath(reg.Name)

		for _, ve := range reg.Validate() {
			if strings.HasPrefix(ve.Field, "tags") {
				// The taxonomy pass below reports tag problems
				// with their own codes.
				continue
			}
			errs = append(errs, ValidationError{
				Field:   field + "." + ve.Field,
				Message: ve.Message,
				Code:    codeForField(ve.Field),
			})
		}

		errs = append(errs, validateTags(field, reg.Tags)...)

		if reg.Name == "" || !reg.Event.Valid() {
			continue
		}
		key := reg.Event.String() + "/" + reg.Name
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("registration %q already declared for event %s", reg.Name, reg.Event),
				Code:    ErrNameRepeated,
			})
			continue
		}
		seen[key] = true
	}

	return errs
}

// validateTags resolves each tag against the command taxonomy and
// flags repeats of the same canonical tag, which a literal string
// comparison would miss for inputs like "create table" next to
// "CREATE TABLE".
func validateTags(field string, tags []string) []ValidationError {
	var errs []ValidationError

	canon := make(map[string]int, len(tags))
	for i, s := range tags {
		tag, err := ddl.ParseTag(s)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.tags[%d]", field, i),
				Message: fmt.Sprintf("unrecognized command tag %q", s),
				Code:    ErrTagUnknown,
			})
			continue
		}
		if first, ok := canon[tag.String()]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.tags[%d]", field, i),
				Message: fmt.Sprintf("tag %q already listed at tags[%d]", tag.String(), first),
				Code:    ErrTagRepeated,
			})
			continue
		}
		canon[tag.String()] = i
	}

	return errs
}

// fieldPath builds the manifest field path for a registration name.
func fieldPath(name string) string {
	if name == "" {
		return RegistrationsPath
	}
	return RegistrationsPath + "." + name
}

// codeForField maps a structural validation field to an error code.
func codeForField(field string) string {
	switch field {
	case "name":
		return ErrNameEmpty
	case "event":
		return ErrEventInvalid
	case "timing":
		return ErrTimingInvalid
	case "enabled":
		return ErrEnabledInvalid
	case "callback_id":
		return ErrCallbackEmpty
	default:
		return ErrGeneric
	}
}
