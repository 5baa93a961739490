package model

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Employee is the staff directory row. EmployeeID is the human-facing
// identifier used for login and project assignment; ID stays internal.
type Employee struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID string `gorm:"type:varchar(50);not null;uniqueIndex:uq_employee_id" json:"employee_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Email      string `gorm:"type:varchar(200)" json:"email"`

	// PasswordHash is a bcrypt hash. New accounts are seeded with the
	// employee id as the initial password.
	PasswordHash string `gorm:"type:text;not null" json:"-"`

	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
	Role     string `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
}

func (Employee) TableName() string { return "employees" }

func (e Employee) IsAdmin() bool { return e.Role == RoleAdmin }
