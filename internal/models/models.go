package models

type Role string

const (
	RoleMember  Role = "member"
	RoleOfficer Role = "officer"
)

// ParseRole maps a backend role string onto a Role. Anything unrecognised is a member.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleOfficer:
		return RoleOfficer
	default:
		return RoleMember
	}
}

// Toggled returns the role an officer switches a member to.
func (r Role) Toggled() Role {
	if r == RoleOfficer {
		return RoleMember
	}
	return RoleOfficer
}

type Category struct {
	ID   int
	Name string
}

type Attachment struct {
	URL      string
	Filename string
}

type Post struct {
	ID         int
	CategoryID int
	Category   string
	Title      string
	Author     string
	CreatedAt  string
	Date       string
	Body       string
	Attachment *Attachment
}

type Comment struct {
	ID        int
	PostID    int
	Author    string
	Content   string
	CreatedAt string
	Date      string
}

type Member struct {
	ID        int
	Name      string
	StudentID string
	Major     string
	Email     string
	Role      Role
}

type Profile struct {
	Name      string
	StudentID string
	Major     string
	Email     string
	Year      string
	FileURL   string
	// Role is the raw role string, empty when the backend sent none.
	Role string
}

type Event struct {
	ID          int
	Title       string
	Start       string
	End         string
	Description string
}

type GalleryItem struct {
	ID       int
	Title    string
	ImageURL string
	Date     string
}
