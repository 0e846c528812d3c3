package authgate

// Area is a part of the application a caller wants to reach.
type Area int

const (
	// AreaProtected needs a signed-in user.
	AreaProtected Area = iota
	// AreaAuth holds the login and registration screens.
	AreaAuth
	// AreaPublic is reachable by anyone.
	AreaPublic
)

func (a Area) String() string {
	switch a {
	case AreaProtected:
		return "protected"
	case AreaAuth:
		return "auth"
	case AreaPublic:
		return "public"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a routing check.
type Decision int

const (
	// Wait means identity resolution is in flight and nothing may be decided yet.
	Wait Decision = iota
	// Allow lets the caller into the requested area.
	Allow
	// RedirectLogin sends a signed-out caller to the auth area.
	RedirectLogin
	// RedirectHome sends a signed-in caller to the protected home.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decide maps a gate state and a requested area to a routing decision.
// A missing identity while loading is never treated as signed out.
func Decide(state State, area Area) Decision {
	if state.Loading {
		return Wait
	}

	switch {
	case state.Identity == nil && area == AreaProtected:
		return RedirectLogin
	case state.Identity != nil && area == AreaAuth:
		return RedirectHome
	default:
		return Allow
	}
}
