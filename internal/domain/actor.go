package domain

// Actor identifies the caller of an operation, resolved once per request by
// the HTTP layer and passed into services.
type Actor struct {
	UserID int64
	Role   string
}

const (
	RoleCustomer   = "CUSTOMER"
	RoleStaff      = "STAFF"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// Privileged reports whether the actor may perform administrative operations
// such as status updates and stock mutations.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// Owns reports whether the actor is the user identified by userID.
func (a Actor) Owns(userID int64) bool {
	return a.UserID == userID
}
