package auth

import (
	"strings"

	"github.com/anisurarzu/goBeyondServer/internal/user"
)

// ExternalProfile is the descriptor handed over by the external identity
// provider after a successful protocol exchange. The exchange itself
// happens outside this service.
type ExternalProfile struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Emails      []string `json:"emails"`
	Photos      []string `json:"photos"`
}

// Email returns the primary email, normalized to lowercase. Empty when
// the provider sent none.
func (p ExternalProfile) Email() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Emails[0]))
}

// Photo returns the primary photo reference, nil when the provider sent none.
func (p ExternalProfile) Photo() *string {
	if len(p.Photos) == 0 || p.Photos[0] == "" {
		return nil
	}
	return &p.Photos[0]
}

type externalActionType int

const (
	// actionAccept: the external id is already linked, just log the user in.
	actionAccept externalActionType = iota
	// actionLink: an account with the same email exists; attach the
	// external id to it, filling the image only if previously unset.
	actionLink
	// actionCreate: no matching account; create one with no password hash.
	actionCreate
)

type externalAction struct {
	typ  externalActionType
	user *user.User // set for accept and link
	new  user.NewUser
}

// decideExternalLogin is the pure merge policy for external-identity
// logins, separated from the store calls so it can be tested on its own.
// Linking by email means whoever controls the provider account for an
// email controls the local account with that email; that trust in the
// provider is an accepted assumption, not a bug.
func decideExternalLogin(byGoogleID, byEmail *user.User, p ExternalProfile) externalAction {
	if byGoogleID != nil {
		return externalAction{typ: actionAccept, user: byGoogleID}
	}
	if byEmail != nil {
		return externalAction{typ: actionLink, user: byEmail}
	}

	googleID := p.ID
	first, last := splitDisplayName(p.DisplayName)
	return externalAction{
		typ: actionCreate,
		new: user.NewUser{
			Email:     p.Email(),
			FirstName: first,
			LastName:  last,
			Image:     p.Photo(),
			GoogleID:  &googleID,
		},
	}
}

// splitDisplayName splits a display name into first/last at the first
// space. "Ada" becomes first name only; "Ada Lovelace King" becomes
// ("Ada", "Lovelace King").
func splitDisplayName(name string) (*string, *string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	idx := strings.Index(name, " ")
	if idx < 0 {
		return &name, nil
	}

	first := name[:idx]
	last := strings.TrimSpace(name[idx+1:])
	if last == "" {
		return &first, nil
	}
	return &first, &last
}
