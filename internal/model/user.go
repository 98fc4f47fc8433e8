package model

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
)

// swagger:model User
type User struct {
	BaseModel
	Email     string   `gorm:"size:100;unique;not null" json:"email"`
	Password  string   `gorm:"column:password_hash;size:100;not null" json:"-"`
	Role      UserRole `gorm:"type:enum('student','teacher');default:'student'" json:"role"`
	FirstName string   `gorm:"size:100;not null" json:"firstName"`
	LastName  string   `gorm:"size:100;not null" json:"lastName"`
	Avatar    string   `gorm:"size:255" json:"avatar"`
}

func (User) TableName() string {
	return "users"
}

// FullName 姓名拼接，教师端列表和CSV导出使用
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
