package comment_test

import (
	"errors"
	"worksync/domain"
	"worksync/domain/comment"
	"worksync/event"
	"worksync/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Comments", func() {
	var (
		testDatabase *testinfra.TestDatabase
		db           *gorm.DB
	)
	BeforeEach(func() {
		testDatabase, db = setupDatabase()
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	comment4 := func(content string) *domain.Comment {
		c, err := comment.CreateComment(&domain.CommentCreation{TaskID: 1000, Content: content}, testinfra.BuildSession(4))
		Expect(err).To(BeNil())
		return c
	}

	Describe("CreateComment", func() {
		It("should let viewers comment", func() {
			c := comment4("looks good")
			Expect(c.AuthorID).To(Equal(types.ID(4)))
			Expect(c.AuthorName).To(Equal("user4"))
			Expect(c.ProjectID).To(Equal(types.ID(100)))

			var count int
			Expect(db.Model(&event.EventRecord{}).Where("source_type = ? AND source_id = ?", event.SourceTypeTask, 1000).
				Count(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("should deny outsiders", func() {
			_, err := comment.CreateComment(&domain.CommentCreation{TaskID: 1000, Content: "hi"}, testinfra.BuildSession(5))
			Expect(err).To(Equal(domain.ErrAccessDenied))
		})

		It("should refuse comments when the project disables them", func() {
			Expect(db.Model(&domain.Project{}).Where("id = ?", 100).Update("setting_allow_comments", false).Error).To(BeNil())
			_, err := comment.CreateComment(&domain.CommentCreation{TaskID: 1000, Content: "hi"}, testinfra.BuildSession(1))
			Expect(errors.Is(err, domain.ErrPreconditionFailed)).To(BeTrue())
		})
	})

	Describe("QueryComments", func() {
		It("should list comments in creation order", func() {
			comment4("first")
			comment4("second")
			comments, err := comment.QueryComments(&domain.CommentQuery{TaskID: 1000}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			Expect(len(comments)).To(Equal(2))
			Expect(comments[0].Content).To(Equal("first"))
			Expect(comments[1].Content).To(Equal("second"))

			_, err = comment.QueryComments(&domain.CommentQuery{TaskID: 1000}, testinfra.BuildSession(5))
			Expect(err).To(Equal(domain.ErrAccessDenied))
		})
	})

	Describe("DeleteComment", func() {
		It("should let the author delete own comment", func() {
			c := comment4("oops")
			Expect(comment.DeleteComment(c.ID, testinfra.BuildSession(4))).To(BeNil())
			comments, err := comment.QueryComments(&domain.CommentQuery{TaskID: 1000}, testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(comments).To(BeEmpty())
		})

		It("should require admin for comments of others", func() {
			c := comment4("spam")
			Expect(comment.DeleteComment(c.ID, testinfra.BuildSession(3))).To(Equal(domain.ErrAccessDenied))
			Expect(comment.DeleteComment(c.ID, testinfra.BuildSession(2))).To(BeNil())
		})

		It("should succeed when comment not exist", func() {
			Expect(comment.DeleteComment(404, testinfra.BuildSession(4))).To(BeNil())
		})
	})
})
