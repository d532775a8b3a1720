package domain

import (
	"github.com/fundwit/go-commons/types"
)

// ProjectMember binds a user to a project with a member role, the owner of a project never has one.
type ProjectMember struct {
	ProjectID types.ID `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID    types.ID `json:"userId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role       MemberRole      `json:"role" sql:"type:VARCHAR(16) NOT NULL"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ProjectMemberDetail struct {
	ProjectMember

	ProjectName string `json:"projectName"`
	MemberName  string `json:"memberName"`
}

type ProjectMemberCreation struct {
	ProjectID types.ID   `json:"projectId" binding:"required"`
	UserID    types.ID   `json:"userId" binding:"required"`
	Role      MemberRole `json:"role" binding:"required,memberrole"`
}

type ProjectMemberQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
}

type ProjectMemberDeletion struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	UserID    types.ID `form:"userId" binding:"required"`
}
