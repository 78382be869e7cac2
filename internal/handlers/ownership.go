package handlers

import "strings"

// ownedBy reports whether the resource owned by ownerID may be mutated by
// the principal actorID. Identifiers are compared as opaque strings after
// trimming surrounding whitespace. An empty identifier on either side never
// matches anything.
func ownedBy(ownerID, actorID string) bool {
	owner := strings.TrimSpace(ownerID)
	actor := strings.TrimSpace(actorID)
	if owner == "" || actor == "" {
		return false
	}
	return owner == actor
}
