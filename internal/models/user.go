package models

// User is owned by the surrounding application; this subsystem only
// reads the identity fields it needs for search results and joins.
type User struct {
	BaseModel
	Username string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}

// UserBasicInfo is the public slice of a user returned inside friend
// lists, member lists and conversation summaries.
type UserBasicInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// BasicInfo projects a User down to its public fields.
func (u *User) BasicInfo() *UserBasicInfo {
	return &UserBasicInfo{ID: u.ID, Username: u.Username, Name: u.Name}
}
