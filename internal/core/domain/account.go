package domain

const EntityAccount = "Account"

type AccountRole int

const (
	AccountRoleStaff    AccountRole = 1
	AccountRoleLecturer AccountRole = 2
)

func (r AccountRole) Valid() bool {
	return r == AccountRoleStaff || r == AccountRoleLecturer
}

// PrincipalRole maps a stored account role to the role carried in tokens.
func (r AccountRole) PrincipalRole() string {
	if r == AccountRoleStaff {
		return RoleStaff
	}
	return RoleLecturer
}

type Account struct {
	ID           int64
	Email        string
	Name         string
	Role         AccountRole
	PasswordHash string
}

type AccountSnapshot struct {
	AccountID    int64       `json:"accountId"`
	AccountEmail string      `json:"accountEmail"`
	AccountName  string      `json:"accountName"`
	AccountRole  AccountRole `json:"accountRole"`
}

func (a Account) EntityName() string { return EntityAccount }

func (a Account) AuditKey() any {
	return map[string]int64{"accountId": a.ID}
}

func (a Account) AuditSnapshot() any {
	return AccountSnapshot{
		AccountID:    a.ID,
		AccountEmail: a.Email,
		AccountName:  a.Name,
		AccountRole:  a.Role,
	}
}

type AccountFilter struct {
	Search string
	Role   *AccountRole
}
