package domain

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

// Label is a tag known to a project, task tags are drawn from the labels of their project.
type Label struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name      string   `json:"name" gorm:"unique_index:uni_label_name_project"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL" gorm:"unique_index:uni_label_name_project"`

	CreatorID  types.ID        `json:"creatorId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type LabelCreation struct {
	Name      string   `json:"name" binding:"required,lte=50"`
	ProjectID types.ID `json:"projectId" binding:"required"`
}

type LabelQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
}

// NormalizeTags trims tags and drops blank and repeated ones, the first occurrence keeps its position.
func NormalizeTags(tags []string) Tags {
	result := Tags{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

func (t Tags) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

func (t Tags) Without(tag string) Tags {
	result := Tags{}
	for _, v := range t {
		if v != tag {
			result = append(result, v)
		}
	}
	return result
}
