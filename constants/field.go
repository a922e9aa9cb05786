package constants

import (
	"strings"
)

// Field is a canonical attribute of an event registration record.
type Field string

const (
	EventName          Field = "Event name"
	Department         Field = "Department"
	DateOfEvent        Field = "Date of event"
	DateOfInstallation Field = "Date of installation"
	Order              Field = "Order"
	Participants       Field = "Participants"
	Responsible        Field = "Responsible"
	EventFormat        Field = "Event format"
	GuestsOfHonor      Field = "Guests of honor"
	EventLevel         Field = "Event level"
	Schedule           Field = "Schedule"
	TechnicalEquipment Field = "Necessary technical equipment"
	AudioTraining      Field = "Training on working with audio equipment"
)

// canonical order; output columns and JSON keys follow it
var allFields = []Field{
	EventName,
	Department,
	DateOfEvent,
	DateOfInstallation,
	Order,
	Participants,
	Responsible,
	EventFormat,
	GuestsOfHonor,
	EventLevel,
	Schedule,
	TechnicalEquipment,
	AudioTraining,
}

// CanonicalFields returns the canonical field set in output order.
func CanonicalFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// AsStringSlice returns the canonical field names in output order.
func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// Canonicalize resolves a user supplied name (config files, CLI) to a canonical field.
// Matching ignores case and surrounding whitespace.
func Canonicalize(input string) (Field, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, f := range allFields {
		if normalized == strings.ToLower(string(f)) {
			return f, true
		}
	}
	return "", false
}
