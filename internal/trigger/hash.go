package trigger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	DomainFiring       = "heed/firing/v1"
	DomainRegistration = "heed/registration/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FiringID computes the content-addressed ID for a firing-log entry.
// Stable given the same inputs, which makes firing-log appends
// idempotent across retries and replays.
//
// Deparse output (schema/object/text) is intentionally excluded:
// the ID captures "which callback fired when", not the payload it saw.
func FiringID(commandID string, event Event, tag, registration, callbackID string, seq int64) (string, error) {
	obj := map[string]any{
		"command_id":   commandID,
		"event":        event.String(),
		"tag":          tag,
		"registration": registration,
		"callback_id":  callbackID,
		"seq":          seq,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("FiringID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFiring, canonical), nil
}

// MustFiringID is like FiringID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFiringID(commandID string, event Event, tag, registration, callbackID string, seq int64) string {
	id, err := FiringID(commandID, event, tag, registration, callbackID, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// Fingerprint computes a content-addressed digest of a registration's
// definition (everything except the store rowid). Two registrations
// with the same fingerprint are interchangeable, which lets manifest
// application skip rows that already exist unchanged.
func Fingerprint(r Registration) (string, error) {
	tags := make([]any, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = t
	}
	obj := map[string]any{
		"name":        r.Name,
		"event":       r.Event.String(),
		"timing":      r.Timing.String(),
		"enabled":     r.Enabled.String(),
		"callback_id": r.CallbackID,
		"tags":        tags,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRegistration, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
func MustFingerprint(r Registration) string {
	fp, err := Fingerprint(r)
	if err != nil {
		panic(err)
	}
	return fp
}
