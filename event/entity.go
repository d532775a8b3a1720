package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

const (
	EventCategoryCreated         = EventCategory("CREATED")
	EventCategoryDeleted         = EventCategory("DELETED")
	EventCategoryPropertyUpdated = EventCategory("PROPERTY_UPDATED")
	EventCategoryStatusChanged   = EventCategory("STATUS_CHANGED")
	EventCategoryMemberUpdated   = EventCategory("MEMBER_UPDATED")
)

const (
	SourceTypeProject = "PROJECT"
	SourceTypeTask    = "TASK"
)

type EventCategory string

type Event struct {
	SourceID   types.ID `json:"sourceId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`
	// ProjectID the project the source belongs to
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	CreatorID   types.ID `json:"creatorId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory     `json:"eventCategory"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
}

type EventRecord struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
	Synced    bool            `json:"synced"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`

	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

func (t UpdatedProperties) Value() (driver.Value, error) {
	if t == nil {
		t = UpdatedProperties{}
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *UpdatedProperties) Scan(v interface{}) error {
	if v == nil {
		*c = UpdatedProperties{}
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
	return json.Unmarshal([]byte(jsonString), c)
}
