package constants

import "strings"

// StatusProcessed is written to the summary table for files that produced a record.
const StatusProcessed = "Processed"

const statusErrorPrefix = "Error: "

// ErrorStatus formats the summary status for a failed file.
func ErrorStatus(message string) string {
	return statusErrorPrefix + strings.TrimSpace(message)
}

// IsErrorStatus reports whether status was produced by ErrorStatus.
func IsErrorStatus(status string) bool {
	return strings.HasPrefix(status, statusErrorPrefix)
}
