// Package validate enforces the token validity rule for the line-oriented
// vocabulary format. A token containing a line terminator would corrupt the
// output file, so such tokens are excluded before any counting happens.
package validate

import "strings"

// Token reports whether a raw token may enter the vocabulary. Empty tokens
// and tokens containing a line-feed or carriage-return byte are rejected.
func Token(token string) bool {
	if token == "" {
		return false
	}
	return !strings.ContainsAny(token, "\n\r")
}
