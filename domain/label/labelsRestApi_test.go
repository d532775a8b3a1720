package label_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"worksync/bizerror"
	"worksync/domain"
	"worksync/domain/label"
	"worksync/session"
	"worksync/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("LabelsRestApi", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		label.RegisterLabelsRestApis(router, testinfra.InjectSession(testinfra.BuildSession(3)))
	})
	AfterEach(func() {
		label.CreateLabelFunc = label.CreateLabel
		label.QueryLabelsFunc = label.QueryLabels
		label.DeleteLabelFunc = label.DeleteLabel
	})

	It("should create label", func() {
		label.CreateLabelFunc = func(c *domain.LabelCreation, s *session.Session) (*domain.Label, error) {
			return &domain.Label{ID: 9, Name: c.Name, ProjectID: c.ProjectID, CreatorID: s.Identity.ID}, nil
		}
		req := httptest.NewRequest(http.MethodPost, label.LabelsApiRoot, strings.NewReader(`{"name": "backend", "projectId": "100"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"id":"9","name":"backend","projectId":"100","creatorId":"3"`))

		req = httptest.NewRequest(http.MethodPost, label.LabelsApiRoot, strings.NewReader(`{"name": "backend"}`))
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("should query labels of project", func() {
		label.QueryLabelsFunc = func(q *domain.LabelQuery, s *session.Session) ([]domain.Label, error) {
			Expect(q.ProjectID).To(Equal(types.ID(100)))
			return []domain.Label{{ID: 9, Name: "backend", ProjectID: 100}}, nil
		}
		req := httptest.NewRequest(http.MethodGet, label.LabelsApiRoot+"?projectId=100", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"name":"backend"`))
	})

	It("should delete label", func() {
		var deleted types.ID
		label.DeleteLabelFunc = func(id types.ID, s *session.Session) error {
			deleted = id
			return nil
		}
		req := httptest.NewRequest(http.MethodDelete, label.LabelsApiRoot+"/9", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(deleted).To(Equal(types.ID(9)))
	})
})
