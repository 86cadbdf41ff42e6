package oauth

import "strings"

// splitScope splits a space-delimited scope string, dropping empties.
func splitScope(scope string) []string {
	return strings.Fields(scope)
}
