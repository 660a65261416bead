package directory

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	EmployeeCode     string     `json:"employeeId"`
	Phone            string     `json:"phone"`
	EmergencyContact string     `json:"emergencyContact"`
	EmergencyPhone   string     `json:"emergencyPhone"`
	DepartmentID     *int64     `json:"departmentId,omitempty"`
	DepartmentName   string     `json:"departmentName,omitempty"`
	ManagerID        *int64     `json:"managerId,omitempty"`
	ManagerName      string     `json:"managerName,omitempty"`
	Role             string     `json:"role"`
	JoinDate         time.Time  `json:"joinDate"`
	Status           string     `json:"status"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Employees   int       `json:"employees"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateUserInput struct {
	Name         string     `json:"name" validate:"required,max=100"`
	Email        string     `json:"email" validate:"required,email,max=254"`
	EmployeeCode string     `json:"employeeId" validate:"required,max=20"`
	Phone        string     `json:"phone" validate:"max=30"`
	DepartmentID *int64     `json:"departmentId" validate:"omitempty,gt=0"`
	ManagerID    *int64     `json:"managerId" validate:"omitempty,gt=0"`
	Role         string     `json:"role" validate:"omitempty,oneof=employee manager admin"`
	JoinDate     *time.Time `json:"joinDate"`
}

// CreatedUser carries the one-time temporary password alongside the user.
type CreatedUser struct {
	User                User   `json:"user"`
	TemporaryPassword   string `json:"temporaryPassword"`
	BalancesProvisioned int    `json:"balancesProvisioned"`
}

type ProfileUpdate struct {
	Phone            string `json:"phone" validate:"max=30"`
	EmergencyContact string `json:"emergencyContact" validate:"max=100"`
	EmergencyPhone   string `json:"emergencyPhone" validate:"max=30"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type DepartmentInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UserFilter struct {
	Status       string
	Role         string
	DepartmentID int64
	Search       string
	Limit        int
	Offset       int
}

type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}
