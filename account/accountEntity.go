package account

import "github.com/fundwit/go-commons/types"

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name   string   `json:"name" gorm:"unique_index:user_name_uni"`
	Email  string   `json:"email"`
	Secret string   `json:"-"`

	Nickname  string   `json:"nickname"`
	Role      UserRole `json:"role" sql:"type:VARCHAR(16)"`
	AvatarURL string   `json:"avatarUrl"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type UserInfo struct {
	ID        types.ID `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Nickname  string   `json:"nickname"`
	Role      UserRole `json:"role"`
	AvatarURL string   `json:"avatarUrl"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6,lte=32"`
}

type UserCreation struct {
	Name     string   `json:"name" binding:"required,lte=32"`
	Secret   string   `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string   `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Role     UserRole `json:"role" binding:"omitempty,oneof=USER ADMIN"`
}

type UserUpdation struct {
	Nickname string `json:"nickname" binding:"required,lte=32"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Nickname: u.Nickname, Role: u.Role, AvatarURL: u.AvatarURL}
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
