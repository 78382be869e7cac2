package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
)

// requirePrincipal fetches the authenticated principal from the request
// context, writing a 401 envelope when it is absent.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		respondError(r.Context(), w, http.StatusUnauthorized, "authentication required")
		return auth.Principal{}, false
	}
	return principal, true
}

// viewerID returns the authenticated user's id, or the empty string for an
// anonymous request. The empty string matches no rows in viewer-dependent
// read models, so anonymous flags come back false.
func viewerID(ctx context.Context) string {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return ""
	}
	return principal.ID
}

// pathID extracts and validates a UUID path parameter, writing a 400
// envelope when the value is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return "", false
	}
	return id, true
}
