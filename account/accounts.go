package account

import (
	"errors"
	"worksync/bizerror"
	"worksync/domain"
	"worksync/idgen"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
	"golang.org/x/crypto/bcrypt"
)

var (
	userIdWorker *sonyflake.Sonyflake
)

func init() {
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
}

func HashSecret(raw string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		// only fails for secrets longer than 72 bytes, which binding rules reject
		panic(err)
	}
	return string(hashed)
}

func VerifySecret(hashed, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}

// Authenticate finds the user by name and verifies the password
func Authenticate(db *gorm.DB, name, password string) (*User, error) {
	user := User{}
	if err := db.Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	if !VerifySecret(user.Secret, password) {
		return nil, bizerror.ErrUnauthenticated
	}
	return &user, nil
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where("id = ?", s.Identity.ID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrInvalidPassword
			}
			return err
		}
		if !VerifySecret(user.Secret, u.OriginalSecret) {
			return bizerror.ErrInvalidPassword
		}
		return tx.Model(&User{}).Where("id = ?", user.ID).Update("secret", HashSecret(u.NewSecret)).Error
	})
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	var users []User
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.Info())
	}
	return &infos, nil
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.IsSystemAdmin() {
		return nil, bizerror.ErrForbidden
	}
	role := c.Role
	if role == "" {
		role = UserRoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidArgument
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Email: c.Email, Nickname: c.Nickname,
		Secret: HashSecret(c.Secret), Role: role, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Create(&user).Error; err != nil {
		return nil, err
	}
	info := user.Info()
	return &info, nil
}

func UpdateUser(userId types.ID, c *UserUpdation, s *session.Session) error {
	if !s.Perms.IsSystemAdmin() && userId != s.Identity.ID {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where("id = ?", userId).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&User{}).Where("id = ?", userId).
			Updates(map[string]interface{}{"nickname": c.Nickname, "email": c.Email}).Error
	})
}

func UpdateAvatarURL(userId types.ID, url string, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Model(&User{}).Where("id = ?", userId).Update("avatar_url", url)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func FindUser(db *gorm.DB, id types.ID) (*UserInfo, error) {
	user := User{}
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	info := user.Info()
	return &info, nil
}

// QueryAccountNames resolves display names, unknown ids are absent from the result
func QueryAccountNames(db *gorm.DB, ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	var records []User
	if err := db.Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}
