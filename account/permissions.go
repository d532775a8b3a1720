package account

import (
	"errors"
	"worksync/authority"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const AdminUserID = types.ID(1)

var (
	LoadPermFunc = loadPerms
)

func LoadPermFuncReset() {
	LoadPermFunc = loadPerms
}

// DefaultSecurityConfiguration makes sure the bootstrap administrator exists
func DefaultSecurityConfiguration(db *gorm.DB, initialAdminPassword string) error {
	if initialAdminPassword == "" {
		initialAdminPassword = "admin123"
	}
	return db.Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Where("id = ?", AdminUserID).First(&admin).Error
		if err == nil {
			if admin.Role != UserRoleAdmin {
				return tx.Model(&User{}).Where("id = ?", AdminUserID).Update("role", UserRoleAdmin).Error
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&User{ID: AdminUserID, Name: "admin", Secret: HashSecret(initialAdminPassword),
			Role: UserRoleAdmin, CreateTime: types.CurrentTimestamp()}).Error
	})
}

// system permissions only, project access is resolved per request against the project members
func loadPerms(db *gorm.DB, uid types.ID) (authority.Permissions, error) {
	user := User{}
	if err := db.Where("id = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}
	perms := authority.Permissions{}
	if user.Role == UserRoleAdmin {
		perms = append(perms, authority.SystemAdminPermission)
	}
	return perms, nil
}
