package auth

// Account is what the identity provider asserts about the signed-in user
// after a successful code exchange. It contains facts only, no decisions.
type Account struct {
	Subject  string // provider-scoped user identifier (sub)
	TenantID string // directory the account signed in from (tid)
	Name     string // display name
	Username string // login identifier, usually a UPN or email
}

// User is the identity record kept in the session. Its presence is the
// only signal that a session is authenticated.
type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// UserFromAccount copies the fields the session keeps.
func UserFromAccount(a Account) User {
	return User{
		Name:     a.Name,
		Username: a.Username,
	}
}
