package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Comment struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TaskID    types.ID `json:"taskId" sql:"type:BIGINT UNSIGNED NOT NULL" gorm:"index:comment_task_idx"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	AuthorID   types.ID `json:"authorId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	AuthorName string   `json:"authorName"`
	Content    string   `json:"content" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type CommentCreation struct {
	TaskID  types.ID `json:"taskId" binding:"required"`
	Content string   `json:"content" binding:"required,lte=1000"`
}

type CommentQuery struct {
	TaskID types.ID `form:"taskId" binding:"required"`
}
