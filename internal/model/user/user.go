package user

// User is a row of the users table.
type User struct {
	FullName       *string `json:"full_name"`
	Email          string  `json:"email"`
	HashedPassword string  `json:"-"`
	ID             int64   `json:"id"`
	IsActive       bool    `json:"is_active"`
	IsSuperuser    bool    `json:"is_superuser"`
}

// Update carries the columns to change. Nil fields are left untouched;
// ClearFullName sets full_name to NULL.
type Update struct {
	Email          *string
	HashedPassword *string
	FullName       *string
	IsActive       *bool
	IsSuperuser    *bool
	ClearFullName  bool
}

func (u *Update) IsEmpty() bool {
	return !u.ClearFullName &&
		u.Email == nil &&
		u.HashedPassword == nil &&
		u.FullName == nil &&
		u.IsActive == nil &&
		u.IsSuperuser == nil
}
