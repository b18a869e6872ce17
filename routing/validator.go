package routing

import "strings"

// Validate is the post-hoc routing gate: success requires a non-empty
// response AND that no earlier stage reported failure. It can only downgrade
// an optimistic success to false, never upgrade false to true, and passes
// every other metadata field through unchanged. It is pure and idempotent.
func Validate(md Metadata, response string) Metadata {
	if strings.TrimSpace(response) == "" {
		md.Success = false
	}
	return md
}
