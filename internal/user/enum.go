package user

type Role string

const (
	RoleEmployee Role = "employee"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

var AllRoles = []Role{
	RoleEmployee,
	RoleReviewer,
	RoleAdmin,
}

func (r Role) IsValid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}
