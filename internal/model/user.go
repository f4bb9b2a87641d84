package model

type CreateUserParams struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	TOSAgreement bool
}

// User is keyed by email. Checks holds the ids of every check the user owns
// and is the authoritative membership list for them.
type User struct {
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Email          string   `json:"email"`
	HashedPassword string   `json:"hashedPassword,omitempty"`
	TOSAgreement   bool     `json:"tosAgreement"`
	Checks         []string `json:"checks,omitempty"`
}

func (u *User) HasCheck(id string) bool {
	for _, c := range u.Checks {
		if c == id {
			return true
		}
	}
	return false
}

// RemoveCheck drops id from the user's checks and reports whether it was there.
func (u *User) RemoveCheck(id string) bool {
	for i, c := range u.Checks {
		if c == id {
			u.Checks = append(u.Checks[:i], u.Checks[i+1:]...)
			return true
		}
	}
	return false
}
