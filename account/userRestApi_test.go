package account_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"worksync/account"
	"worksync/authority"
	"worksync/bizerror"
	"worksync/session"
	"worksync/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("UserRestApi", func() {
	var (
		router *gin.Engine
		sec    *session.Session
	)
	BeforeEach(func() {
		sec = testinfra.BuildSession(1, authority.SystemAdminPermission)
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		account.RegisterUsersHandler(router, testinfra.InjectSession(sec))
	})
	AfterEach(func() {
		account.QueryUsersFunc = account.QueryUsers
		account.CreateUserFunc = account.CreateUser
		account.UpdateUserFunc = account.UpdateUser
		account.UpdateBasicAuthSecretFunc = account.UpdateBasicAuthSecret
	})

	Describe("UserInfoQueryHandler", func() {
		It("should return the current session", func() {
			r := gin.Default()
			r.GET("/me", testinfra.InjectSession(sec), account.UserInfoQueryHandler)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			status, body, _ := testinfra.ExecuteRequest(req, r)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"token":"token_1","identity":{"id":"1","name":"user1","nickname":""},"perms":["system:admin"]}`))
		})
	})

	Describe("HandleQueryUsers", func() {
		It("should return users", func() {
			account.QueryUsersFunc = func(s *session.Session) (*[]account.UserInfo, error) {
				return &[]account.UserInfo{{ID: 10, Name: "ann", Role: account.UserRoleUser}}, nil
			}
			req := httptest.NewRequest(http.MethodGet, account.UsersApiRoot, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`[{"id":"10","name":"ann","email":"","nickname":"","role":"USER","avatarUrl":""}]`))
		})

		It("should return 500 when service failed", func() {
			account.QueryUsersFunc = func(s *session.Session) (*[]account.UserInfo, error) {
				return nil, errors.New("a mocked error")
			}
			req := httptest.NewRequest(http.MethodGet, account.UsersApiRoot, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusInternalServerError))
			Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"a mocked error","data":null}`))
		})
	})

	Describe("HandleCreateUser", func() {
		It("should create user", func() {
			var payload *account.UserCreation
			account.CreateUserFunc = func(c *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				payload = c
				return &account.UserInfo{ID: 10, Name: c.Name, Role: account.UserRoleUser}, nil
			}
			req := httptest.NewRequest(http.MethodPost, account.UsersApiRoot, strings.NewReader(`{"name":"ann","secret":"123456"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(MatchJSON(`{"id":"10","name":"ann","email":"","nickname":"","role":"USER","avatarUrl":""}`))
			Expect(*payload).To(Equal(account.UserCreation{Name: "ann", Secret: "123456"}))
		})

		It("should reject invalid payload", func() {
			req := httptest.NewRequest(http.MethodPost, account.UsersApiRoot, strings.NewReader(`{"name":"ann","secret":"123"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))

			req = httptest.NewRequest(http.MethodPost, account.UsersApiRoot, strings.NewReader(`{"name":"ann","secret":"123456","role":"ROOT"}`))
			status, _, _ = testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("HandleUpdateUser", func() {
		It("should update user", func() {
			var id types.ID
			var payload *account.UserUpdation
			account.UpdateUserFunc = func(userId types.ID, c *account.UserUpdation, s *session.Session) error {
				id, payload = userId, c
				return nil
			}
			req := httptest.NewRequest(http.MethodPut, account.UsersApiRoot+"/10", strings.NewReader(`{"nickname":"Ann"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(id).To(Equal(types.ID(10)))
			Expect(*payload).To(Equal(account.UserUpdation{Nickname: "Ann"}))
		})

		It("should reject invalid id", func() {
			req := httptest.NewRequest(http.MethodPut, account.UsersApiRoot+"/abc", strings.NewReader(`{"nickname":"Ann"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("HandleUpdateBaseAuth", func() {
		It("should map invalid password", func() {
			account.UpdateBasicAuthSecretFunc = func(u *account.BasicAuthUpdating, s *session.Session) error {
				return bizerror.ErrInvalidPassword
			}
			req := httptest.NewRequest(http.MethodPut, account.SessionUsersApiRoot+"/basic-auths",
				strings.NewReader(`{"originalSecret":"000000","newSecret":"654321"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body).To(MatchJSON(`{"code":"security.invalid_password","message":"invalid password","data":null}`))
		})
	})
})
