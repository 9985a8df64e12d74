package entity

// User represents an account row in the `users` table.
// PasswordDigest is stored in the `password` column and never serialized.
type User struct {
	ID             int64  `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	PasswordDigest string `db:"password" json:"-"`
}

// UserView is the public projection returned by list endpoints.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u *User) View() UserView {
	return UserView{ID: u.ID, Username: u.Username}
}
