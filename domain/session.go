package domain

// SessionData is the user record sealed into the session cookie. It is a
// strict copy of the fields the backend vouched for at login time; nothing
// else may ever be written into it.
type SessionData struct {
	Email        string      `json:"email"`
	Expiration   string      `json:"expiration"`
	IsCompleted  bool        `json:"isCompleted"`
	IsSuperAdmin bool        `json:"isSuperAdmin"`
	Token        SealedToken `json:"token"`
	OLTToken     SealedToken `json:"oltToken"`
	UUID         string      `json:"uuid"`
	PBUUID       string      `json:"pbUuid"`
}

// SessionFromUser copies exactly the backend-vouched fields into a session
// record. The completion flag mirrors the backend value.
func SessionFromUser(u *User) SessionData {
	return SessionData{
		Email:        u.Email,
		Expiration:   u.Expiration,
		IsCompleted:  u.IsCompleted,
		IsSuperAdmin: u.IsSuperAdmin,
		Token:        u.Token,
		OLTToken:     u.OLTToken,
		UUID:         u.UUID,
		PBUUID:       u.PBUUID,
	}
}
