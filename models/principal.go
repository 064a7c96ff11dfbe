package models

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated caller
type Principal struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsValid reports whether role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

// CanManageQuizzes reports whether the caller may author quizzes and read analytics
func (p Principal) CanManageQuizzes() bool {
	return p.Role == RoleTeacher || p.Role == RoleAdmin
}

// Owns reports whether the caller may modify a quiz created by ownerID.
// Admins own everything.
func (p Principal) Owns(ownerID string) bool {
	return p.Role == RoleAdmin || (p.Role == RoleTeacher && p.UserID == ownerID)
}
