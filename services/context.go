package services

const (
	PrivilegeBlogs   = "blogs"
	PrivilegeArchive = "archive"
)

type User struct {
	ID         string
	Privileges []string
}

func (u *User) Can(privilege string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

// RequestContext carries who is acting on a request into the services.
type RequestContext struct {
	User *User
}

func (rc RequestContext) UserID() string {
	if rc.User == nil {
		return ""
	}
	return rc.User.ID
}
