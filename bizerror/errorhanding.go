package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"worksync/common"
	"worksync/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	status, body := resolve(genericErr)
	if status >= http.StatusInternalServerError {
		logrus.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
	} else {
		logrus.WithField("path", c.Request.URL.Path).Warnf("request rejected: %v", err)
	}
	c.JSON(status, body)
	c.Abort()
}

func resolve(err error) (int, *common.ErrorBody) {
	var bizErr common.BizError
	if errors.As(err, &bizErr) {
		respond := bizErr.Respond()
		return respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data}
	}

	// bad request:  io.EOF (no body).
	if errors.Is(err, io.EOF) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"}
	}
	// bad request: json syntax Error
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()}
	}
	// validation failed
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()}
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, &common.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"}
	case errors.Is(err, ErrInvalidPassword):
		return http.StatusUnauthorized, &common.ErrorBody{Code: "security.invalid_password", Message: "invalid password"}
	case errors.Is(err, ErrForbidden), errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, &common.ErrorBody{Code: "security.forbidden", Message: "access forbidden"}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, &common.ErrorBody{Code: "common.too_many_requests", Message: "too many requests"}
	case errors.Is(err, ErrProjectMemberSelfGrant):
		return http.StatusForbidden, &common.ErrorBody{Code: "project.member_self_grant", Message: err.Error()}
	case errors.Is(err, ErrProjectOwnerMember):
		return http.StatusBadRequest, &common.ErrorBody{Code: "project.owner_member", Message: err.Error()}
	case errors.Is(err, ErrTaskAssigneeInvalid):
		return http.StatusBadRequest, &common.ErrorBody{Code: "task.assignee_invalid", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, &common.ErrorBody{Code: "common.invalid_argument", Message: err.Error()}
	case errors.Is(err, domain.ErrPreconditionFailed):
		return http.StatusPreconditionFailed, &common.ErrorBody{Code: "common.precondition_failed", Message: err.Error()}
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict, &common.ErrorBody{Code: "common.concurrent_modification", Message: err.Error()}
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"}
	}

	return http.StatusInternalServerError, &common.ErrorBody{Code: common.CodeInternalServerError, Message: err.Error()}
}
