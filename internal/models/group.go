package models

import "time"

// Group is a chat group.
type Group struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	AvatarURL   string `gorm:"type:varchar(255)" json:"avatar,omitempty"`
	CreatedBy   uint   `gorm:"not null" json:"createdBy"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupMemberRole is a member's role within a group.
type GroupMemberRole string

const (
	AdminRole  GroupMemberRole = "admin"
	MemberRole GroupMemberRole = "member"
)

// GroupMember links a user to a group. The creator is inserted as admin
// in the same transaction that creates the group; a user appears at most
// once per group.
type GroupMember struct {
	BaseModel
	GroupID  uint            `gorm:"not null;index:idx_group_member_group" json:"groupId"`
	UserID   uint            `gorm:"not null;index:idx_group_member_user" json:"userId"`
	Role     GroupMemberRole `gorm:"type:varchar(20);default:'member'" json:"role"`
	JoinedAt time.Time       `json:"joinedAt"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// GroupMemberInfo is the member list entry joined with user identity.
type GroupMemberInfo struct {
	User     *UserBasicInfo  `json:"user"`
	Role     GroupMemberRole `json:"role"`
	JoinedAt time.Time       `json:"joinedAt"`
}
