package event

import (
	"worksync/idgen"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var eventIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

// CreateEvent records an event inside tx, handlers are invoked by Dispatch after commit
func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, projectId types.ID, category EventCategory,
	updatedProperties UpdatedProperties, identity *session.Identity, timestamp types.Timestamp, tx *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		ID: idgen.NextID(eventIdWorker),
		Event: Event{
			SourceType: sourceType,
			SourceID:   sourceId,
			SourceDesc: sourceDesc,
			ProjectID:  projectId,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,

			CreatorID:   identity.ID,
			CreatorName: identity.Name,
		},
		Synced:    false,
		Timestamp: timestamp,
	}
	if err := EventPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// Dispatch invokes handlers for each record, a record is marked synced once no handler failed
func Dispatch(db *gorm.DB, records ...*EventRecord) {
	for _, record := range records {
		if record == nil {
			continue
		}
		failed := false
		for _, r := range InvokeHandlersFunc(record) {
			if !r.Success {
				failed = true
			}
		}
		if !failed {
			if err := MarkSyncedFunc(record.ID, db); err != nil {
				logrus.Warnf("failed to mark event %d synced: %v", record.ID, err)
			}
		}
	}
}

// RedispatchUnsynced dispatches at most limit unsynced events, oldest first
func RedispatchUnsynced(db *gorm.DB, limit int) (int, error) {
	records, err := QueryUnsyncedFunc(limit, db)
	if err != nil {
		return 0, err
	}
	ptrs := make([]*EventRecord, 0, len(records))
	for i := range records {
		ptrs = append(ptrs, &records[i])
	}
	Dispatch(db, ptrs...)
	return len(records), nil
}
