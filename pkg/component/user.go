package component

// UserInfo describes the unprivileged user the image runs as.
type UserInfo struct {
	Create bool
	Name   string
	Group  string
	Home   string
	Sudo   bool
}

// IsComplete reports whether every field is set: the user is created, has sudo rights,
// and has a name, a group and a home.
func (u UserInfo) IsComplete() bool {
	return u.Create && u.Sudo && u.Name != "" && u.Group != "" && u.Home != ""
}

// Chown returns the "user:group" owner string.
func (u UserInfo) Chown() string {
	return u.Name + ":" + u.Group
}
