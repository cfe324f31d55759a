package usecase

// Outcome labels reported through AuthEvents.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeEmailExists        = "email_exists"
	OutcomeUnavailable        = "unavailable"
	OutcomeUnauthenticated    = "unauthenticated"
	OutcomeForbidden          = "forbidden"
	OutcomeInvalidSession     = "invalid_session"
)

// Check labels distinguish the two guard decisions.
const (
	CheckAuthenticate = "authenticate"
	CheckOwnership    = "ownership"
)

// AuthEvents lets use cases report authentication outcomes without depending on a metrics backend.
type AuthEvents interface {
	Registration(outcome string)
	Login(outcome string)
	Logout(outcome string)
	Authorization(check, outcome string)
}

// NopAuthEvents discards every event.
type NopAuthEvents struct{}

func (NopAuthEvents) Registration(string)          {}
func (NopAuthEvents) Login(string)                 {}
func (NopAuthEvents) Logout(string)                {}
func (NopAuthEvents) Authorization(string, string) {}
