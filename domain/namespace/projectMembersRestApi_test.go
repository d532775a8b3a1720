package namespace_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
	"worksync/bizerror"
	"worksync/domain"
	"worksync/domain/namespace"
	"worksync/session"
	"worksync/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ProjectMembersRestApi", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		namespace.RegisterProjectMembersRestApis(router, testinfra.InjectSession(testinfra.BuildSession(1)))
	})
	AfterEach(func() {
		namespace.QueryProjectMembersFunc = namespace.QueryProjectMemberDetails
		namespace.CreateProjectMemberFunc = namespace.CreateProjectMember
		namespace.DeleteProjectMemberFunc = namespace.DeleteProjectMember
	})

	Describe("HandleQueryProjectMembers", func() {
		It("should return member details", func() {
			var query *domain.ProjectMemberQuery
			namespace.QueryProjectMembersFunc = func(d *domain.ProjectMemberQuery, s *session.Session) (*[]domain.ProjectMemberDetail, error) {
				query = d
				return &[]domain.ProjectMemberDetail{{
					ProjectMember: domain.ProjectMember{ProjectID: 1, UserID: 10, Role: domain.MemberRoleEditor,
						CreateTime: types.TimestampOfDate(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
					ProjectName: "p1", MemberName: "u10",
				}}, nil
			}
			req := httptest.NewRequest(http.MethodGet, namespace.ProjectsMemberApiRoot+"?projectId=1", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`[{"projectId": "1", "userId": "10", "role": "editor", "projectName": "p1", "memberName":"u10",
				"createTime": "2021-01-01T00:00:00Z"}]`))
			Expect(query.ProjectID).To(Equal(types.ID(1)))
		})

		It("should require project id", func() {
			req := httptest.NewRequest(http.MethodGet, namespace.ProjectsMemberApiRoot, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))
		})
	})

	Describe("HandleCreateProjectMember", func() {
		It("should create member", func() {
			var payload *domain.ProjectMemberCreation
			namespace.CreateProjectMemberFunc = func(d *domain.ProjectMemberCreation, s *session.Session) error {
				payload = d
				return nil
			}
			req := httptest.NewRequest(http.MethodPost, namespace.ProjectsMemberApiRoot,
				strings.NewReader(`{"projectId": "1", "userId": "10", "role": "admin"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(*payload).To(Equal(domain.ProjectMemberCreation{ProjectID: 1, UserID: 10, Role: domain.MemberRoleAdmin}))
		})

		It("should reject unknown role by binding", func() {
			req := httptest.NewRequest(http.MethodPost, namespace.ProjectsMemberApiRoot,
				strings.NewReader(`{"projectId": "1", "userId": "10", "role": "owner"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring(`"code":"bad_request.validation_failed"`))
		})

		It("should map self grant error", func() {
			namespace.CreateProjectMemberFunc = func(d *domain.ProjectMemberCreation, s *session.Session) error {
				return bizerror.ErrProjectMemberSelfGrant
			}
			req := httptest.NewRequest(http.MethodPost, namespace.ProjectsMemberApiRoot,
				strings.NewReader(`{"projectId": "1", "userId": "1", "role": "admin"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(ContainSubstring(`"code":"project.member_self_grant"`))
		})
	})

	Describe("HandleDeleteProjectMember", func() {
		It("should delete member", func() {
			var payload *domain.ProjectMemberDeletion
			namespace.DeleteProjectMemberFunc = func(d *domain.ProjectMemberDeletion, s *session.Session) error {
				payload = d
				return nil
			}
			req := httptest.NewRequest(http.MethodDelete, namespace.ProjectsMemberApiRoot+"?projectId=1&userId=10", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))
			Expect(*payload).To(Equal(domain.ProjectMemberDeletion{ProjectID: 1, UserID: 10}))
		})
	})
})
