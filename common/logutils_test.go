package common_test

import (
	"worksync/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("Logutils", func() {
	AfterEach(func() {
		common.ConfigureLogger("")
	})

	It("should use json formatter in release mode", func() {
		common.ConfigureLogger("release")
		_, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
		Expect(ok).To(BeTrue())
		Expect(logrus.GetLevel()).To(Equal(logrus.InfoLevel))
	})

	It("should attach service name to every entry", func() {
		entry := logrus.NewEntry(logrus.StandardLogger())
		Expect((&common.DefaultFieldsHook{}).Fire(entry)).To(BeNil())
		Expect(entry.Data["serviceName"]).To(Equal(common.ServiceName))
	})
})
