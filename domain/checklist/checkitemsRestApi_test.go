package checklist_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"worksync/bizerror"
	"worksync/domain"
	"worksync/domain/checklist"
	"worksync/session"
	"worksync/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("CheckItemsRestApi", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		checklist.RegisterCheckItemsRestApis(router, testinfra.InjectSession(testinfra.BuildSession(3)))
	})
	AfterEach(func() {
		checklist.CreateCheckItemFunc = checklist.CreateCheckItem
		checklist.ListCheckItemsFunc = checklist.ListCheckItems
		checklist.ToggleCheckItemFunc = checklist.ToggleCheckItem
		checklist.DeleteCheckItemFunc = checklist.DeleteCheckItem
	})

	Describe("HandleCreateCheckItem", func() {
		It("should create check item", func() {
			var payload *domain.CheckItemCreation
			checklist.CreateCheckItemFunc = func(c *domain.CheckItemCreation, s *session.Session) (*domain.CheckItem, error) {
				payload = c
				return &domain.CheckItem{ID: 10, TaskID: c.TaskID, ProjectID: 100, Name: c.Name}, nil
			}
			req := httptest.NewRequest(http.MethodPost, checklist.CheckItemsApiRoot, strings.NewReader(`{"taskId": "1000", "name": "outline"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(ContainSubstring(`"id":"10","taskId":"1000","projectId":"100","name":"outline"`))
			Expect(*payload).To(Equal(domain.CheckItemCreation{TaskID: 1000, Name: "outline"}))
		})

		It("should reject blank name", func() {
			req := httptest.NewRequest(http.MethodPost, checklist.CheckItemsApiRoot, strings.NewReader(`{"taskId": "1000"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
		})

		It("should map access denied to 403", func() {
			checklist.CreateCheckItemFunc = func(c *domain.CheckItemCreation, s *session.Session) (*domain.CheckItem, error) {
				return nil, domain.ErrAccessDenied
			}
			req := httptest.NewRequest(http.MethodPost, checklist.CheckItemsApiRoot, strings.NewReader(`{"taskId": "1000", "name": "x"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
		})
	})

	Describe("HandleListCheckItems", func() {
		It("should list check items of task", func() {
			var taskId types.ID
			checklist.ListCheckItemsFunc = func(id types.ID, s *session.Session) (*domain.Checklist, error) {
				taskId = id
				return &domain.Checklist{Items: []domain.CheckItem{{ID: 10, TaskID: id, Name: "outline", Done: true}}, Completion: 100}, nil
			}
			req := httptest.NewRequest(http.MethodGet, checklist.CheckItemsApiRoot+"?taskId=1000", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(taskId).To(Equal(types.ID(1000)))
			Expect(body).To(ContainSubstring(`"name":"outline","done":true`))
			Expect(body).To(ContainSubstring(`"completion":100`))
		})

		It("should require task id", func() {
			req := httptest.NewRequest(http.MethodGet, checklist.CheckItemsApiRoot, nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("HandleToggleCheckItem and HandleDeleteCheckItem", func() {
		It("should toggle check item", func() {
			checklist.ToggleCheckItemFunc = func(id types.ID, s *session.Session) (*domain.CheckItem, error) {
				return &domain.CheckItem{ID: id, TaskID: 1000, Name: "outline", Done: true}, nil
			}
			req := httptest.NewRequest(http.MethodPut, checklist.CheckItemsApiRoot+"/10/toggle", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`"id":"10"`))
		})

		It("should delete check item", func() {
			var deleted types.ID
			checklist.DeleteCheckItemFunc = func(id types.ID, s *session.Session) error {
				deleted = id
				return nil
			}
			req := httptest.NewRequest(http.MethodDelete, checklist.CheckItemsApiRoot+"/10", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))
			Expect(deleted).To(Equal(types.ID(10)))
		})

		It("should reject invalid id", func() {
			req := httptest.NewRequest(http.MethodDelete, checklist.CheckItemsApiRoot+"/abc", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
		})
	})
})
