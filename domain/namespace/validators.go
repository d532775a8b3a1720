package namespace

import (
	"sync"
	"worksync/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the "memberrole" and "taskstatus" binding tags to gin's validator
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("memberrole", func(fl validator.FieldLevel) bool {
			return domain.MemberRole(fl.Field().String()).Valid()
		}); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
			return domain.TaskStatus(fl.Field().String()).Valid()
		}); err != nil {
			panic(err)
		}
	})
}
