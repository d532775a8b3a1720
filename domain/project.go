package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

type ProjectStatus string

const (
	ProjectStatusActive    = ProjectStatus("ACTIVE")
	ProjectStatusCompleted = ProjectStatus("COMPLETED")
	ProjectStatusOnHold    = ProjectStatus("ON_HOLD")
	ProjectStatusCancelled = ProjectStatus("CANCELLED")
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name        string        `json:"name"`
	Description string        `json:"description" sql:"type:TEXT"`
	Status      ProjectStatus `json:"status" sql:"type:VARCHAR(16) NOT NULL"`
	Tags        Tags          `json:"tags" sql:"type:TEXT"`

	OwnerID types.ID `json:"ownerId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	// Progress is derived from the task set of the project, clients never set it.
	Progress int `json:"progress" sql:"type:INT NOT NULL"`
	// Version guards read-modify-write cycles on the project aggregate.
	Version int `json:"-" sql:"type:INT NOT NULL"`

	StartDate types.Timestamp `json:"startDate" sql:"type:DATETIME(6)"`
	EndDate   types.Timestamp `json:"endDate" sql:"type:DATETIME(6)"`

	// IsPublic is informational, access is always decided by ownership and membership.
	IsPublic bool            `json:"isPublic"`
	Settings ProjectSettings `json:"settings" gorm:"embedded;embedded_prefix:setting_"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ProjectSettings struct {
	AllowComments    bool `json:"allowComments"`
	AllowFileUploads bool `json:"allowFileUploads"`
	// AutoAssignTasks assigns tasks created without assignee to their creator.
	AutoAssignTasks bool `json:"autoAssignTasks"`
}

func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{AllowComments: true, AllowFileUploads: true, AutoAssignTasks: false}
}

type ProjectCreating struct {
	Name        string           `json:"name" binding:"required,lte=100"`
	Description string           `json:"description" binding:"lte=500"`
	Tags        Tags             `json:"tags"`
	StartDate   types.Timestamp  `json:"startDate"`
	EndDate     types.Timestamp  `json:"endDate"`
	IsPublic    bool             `json:"isPublic"`
	Settings    *ProjectSettings `json:"settings"`
}

type ProjectUpdating struct {
	Name        string           `json:"name" binding:"required,lte=100"`
	Description string           `json:"description" binding:"lte=500"`
	Status      ProjectStatus    `json:"status" binding:"required"`
	Tags        Tags             `json:"tags"`
	EndDate     types.Timestamp  `json:"endDate"`
	IsPublic    *bool            `json:"isPublic"`
	Settings    *ProjectSettings `json:"settings"`
}

type ProjectQuery struct {
	Status ProjectStatus `form:"status"`
	Name   string        `form:"name"`
}

type ProjectOwnerTransfer struct {
	OwnerID types.ID `json:"ownerId" binding:"required"`
}

type ProjectDetail struct {
	Project

	Members   []ProjectMember `json:"members"`
	TaskStats TaskStats       `json:"taskStats"`
}

type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *Tags) Scan(v interface{}) error {
	if v == nil {
		*t = Tags{}
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	if jsonString == "" {
		*t = Tags{}
		return nil
	}
	return json.Unmarshal([]byte(jsonString), t)
}
