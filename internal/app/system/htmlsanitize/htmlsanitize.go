// Package htmlsanitize wraps bluemonday behind the two policies the app
// needs: a UGC policy for rendered rich text and a strict policy that strips
// all markup from free-text form fields before they reach the database.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML with the UGC policy: common formatting tags and safe
// links survive, scripts and event handlers do not.
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// StripTags removes all markup, leaving plain text. Applied to free-text
// trip fields (origin, destination, companions, trip number) on submission.
func StripTags(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
