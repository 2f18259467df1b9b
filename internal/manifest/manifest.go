// Package manifest compiles CUE registration manifests into catalog
// registrations. A manifest declares registrations under a top-level
// "registrations" struct, one field per registration name.
package manifest

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/heeddb/heed/internal/ddl"
	"github.com/heeddb/heed/internal/trigger"
)

// RegistrationsPath is the top-level field a manifest declares its
// registrations under.
const RegistrationsPath = "registrations"

// Compile parses every registration declared under the "registrations"
// field of a manifest value. Compilation is fail-fast: the first bad
// registration aborts. Manifest field order is preserved.
//
// The CUE value should be the manifest root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`registrations: audit: { ... }`)
//	regs, err := Compile(v)
func Compile(v cue.Value) ([]trigger.Registration, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	regsVal := v.LookupPath(cue.ParsePath(RegistrationsPath))
	if !regsVal.Exists() {
		return nil, &CompileError{
			Field:   RegistrationsPath,
			Message: "registrations struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := regsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	regs := []trigger.Registration{}
	for iter.Next() {
		reg, err := CompileRegistration(iter.Value())
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	return regs, nil
}

// CompileRegistration parses a single registration struct. The
// registration name comes from the struct label. Event and callback
// are required; timing defaults to "after", enabled to "always", and
// a missing (or empty) tags list means the registration fires for
// every command tag. Event, timing, enabled, and tag strings resolve
// case-insensitively against the canonical tables.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`registrations: audit: { ... }`)
//	reg, err := CompileRegistration(v.LookupPath(cue.ParsePath("registrations.audit")))
func CompileRegistration(v cue.Value) (trigger.Registration, error) {
	if err := v.Err(); err != nil {
		return trigger.Registration{}, formatCUEError(err)
	}

	reg := trigger.Registration{
		Timing:  trigger.TimingAfter,
		Enabled: trigger.EnabledAlways,
	}

	// Registration name from the struct label. Quoted labels keep
	// their quotes in the selector string.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		reg.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	// Parse event (required)
	eventVal := v.LookupPath(cue.ParsePath("event"))
	if !eventVal.Exists() {
		return trigger.Registration{}, &CompileError{
			Field:   "event",
			Message: "event is required",
			Pos:     v.Pos(),
		}
	}
	eventStr, err := eventVal.String()
	if err != nil {
		return trigger.Registration{}, formatCUEError(err)
	}
	reg.Event, err = trigger.ParseEvent(eventStr)
	if err != nil {
		return trigger.Registration{}, &CompileError{
			Field:   "event",
			Message: err.Error(),
			Pos:     eventVal.Pos(),
		}
	}

	// Parse timing (optional, defaults to "after")
	if timingVal := v.LookupPath(cue.ParsePath("timing")); timingVal.Exists() {
		timingStr, err := timingVal.String()
		if err != nil {
			return trigger.Registration{}, formatCUEError(err)
		}
		reg.Timing, err = trigger.ParseTiming(timingStr)
		if err != nil {
			return trigger.Registration{}, &CompileError{
				Field:   "timing",
				Message: err.Error(),
				Pos:     timingVal.Pos(),
			}
		}
	}

	// Parse enabled (optional, defaults to "always")
	if enabledVal := v.LookupPath(cue.ParsePath("enabled")); enabledVal.Exists() {
		enabledStr, err := enabledVal.String()
		if err != nil {
			return trigger.Registration{}, formatCUEError(err)
		}
		reg.Enabled, err = trigger.ParseEnabled(enabledStr)
		if err != nil {
			return trigger.Registration{}, &CompileError{
				Field:   "enabled",
				Message: err.Error(),
				Pos:     enabledVal.Pos(),
			}
		}
	}

	// Parse callback (required)
	callbackVal := v.LookupPath(cue.ParsePath("callback"))
	if !callbackVal.Exists() {
		return trigger.Registration{}, &CompileError{
			Field:   "callback",
			Message: "callback is required",
			Pos:     v.Pos(),
		}
	}
	reg.CallbackID, err = callbackVal.String()
	if err != nil {
		return trigger.Registration{}, formatCUEError(err)
	}

	// Parse tags (optional, absent or empty means wildcard)
	if tagsVal := v.LookupPath(cue.ParsePath("tags")); tagsVal.Exists() {
		tagIter, err := tagsVal.List()
		if err != nil {
			return trigger.Registration{}, formatCUEError(err)
		}
		var raw []string
		for tagIter.Next() {
			s, err := tagIter.Value().String()
			if err != nil {
				return trigger.Registration{}, formatCUEError(err)
			}
			raw = append(raw, s)
		}
		reg.Tags, err = ddl.NormalizeTags(raw)
		if err != nil {
			return trigger.Registration{}, &CompileError{
				Field:   "tags",
				Message: err.Error(),
				Pos:     tagsVal.Pos(),
			}
		}
	}

	return reg, nil
}

// CompileError represents a manifest compile failure with source
// position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts a CUE SDK error into a CompileError carrying
// the first reported position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may bundle several underlying errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
