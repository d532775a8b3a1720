package event

import (
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = eventPersistCreate
	MarkSyncedFunc         = markSynced
	QueryUnsyncedFunc      = queryUnsynced
)

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

func markSynced(id types.ID, db *gorm.DB) error {
	return db.Model(&EventRecord{}).Where("id = ?", id).Update("synced", true).Error
}

func queryUnsynced(limit int, db *gorm.DB) ([]EventRecord, error) {
	var records []EventRecord
	if err := db.Where("synced = ?", false).Order("timestamp ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
