package models

import "time"

// Capability names a permission checked by host and switcher code.
type Capability string

const (
	CapRead            Capability = "read"
	CapUploadFiles     Capability = "upload_files"
	CapEditPosts       Capability = "edit_posts"
	CapEditOthersPosts Capability = "edit_others_posts"
	CapManageOptions   Capability = "manage_options"
)

// Role groups capabilities the way the site roles do.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
	RoleContributor   Role = "contributor"
	RoleSubscriber    Role = "subscriber"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdministrator: {CapRead, CapUploadFiles, CapEditPosts, CapEditOthersPosts, CapManageOptions},
	RoleEditor:        {CapRead, CapUploadFiles, CapEditPosts, CapEditOthersPosts},
	RoleAuthor:        {CapRead, CapUploadFiles, CapEditPosts},
	RoleContributor:   {CapRead, CapEditPosts},
	RoleSubscriber:    {CapRead},
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants c.
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

type User struct {
	ID           int64
	UserName     string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// Can reports whether u holds capability c. A nil user is anonymous and
// holds nothing.
func (u *User) Can(c Capability) bool {
	if u == nil {
		return false
	}
	return u.Role.Can(c)
}

// IDOrZero returns the user ID, or 0 for an anonymous viewer.
func (u *User) IDOrZero() int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
