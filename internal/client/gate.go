package client

import (
	"github.com/quickcart/quickcart-golang/internal/session"
)

// Decision is the outcome of a route guard check: let the user in, or
// send them somewhere else.
type Decision int

const (
	// DecisionAllow admits the user to the route.
	DecisionAllow Decision = iota
	// DecisionLogin redirects to the login view (not authenticated).
	DecisionLogin
	// DecisionHome redirects home (authenticated but not authorized,
	// e.g. a customer on an admin route).
	DecisionHome
)

// Guard checks whether the current session may enter a protected
// route. Presence of a token is never enough on its own; the token is
// verified against /auth/me every time, and a token the server rejects
// is cleared on the spot so the next navigation does not retry it.
//
// A network failure (as opposed to a rejection) leaves the stored
// token alone and is returned to the caller as a plain error.
func Guard(store *session.Store, api *Client, adminOnly bool) (Decision, error) {
	creds := store.Credentials()
	if creds == nil || creds.Token == "" {
		return DecisionLogin, nil
	}

	api.SetToken(creds.Token)
	user, err := api.Me()
	if err != nil {
		if IsUnauthorized(err) {
			// Expired or invalid. Discard it so we never verify a
			// known-bad token again before the next login.
			store.ClearCredentials()
			api.ClearToken()
			return DecisionLogin, nil
		}
		return DecisionLogin, err
	}

	// The server's view of the account wins over whatever we had.
	store.SetCredentials(creds.Token, *user)

	if adminOnly && !user.IsAdmin() {
		return DecisionHome, nil
	}

	return DecisionAllow, nil
}
