package chathistory_test

import (
	"time"
	_ "time/tzdata"

	"chatadmin/internal/pkg/chathistory"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func pipelineJSON(p mongo.Pipeline) string {
	data, err := bson.MarshalExtJSON(bson.D{{Key: "stages", Value: p}}, false, false)
	Expect(err).NotTo(HaveOccurred())
	return string(data)
}

var _ = Describe("BuildUserReportPipeline", func() {
	var opts chathistory.ReportOptions

	BeforeEach(func() {
		opts = chathistory.ReportOptions{
			StartDate: "2024-10-01",
			EndDate:   "2024-12-31",
			SortBy:    "user_id",
			Order:     chathistory.Ascending,
		}
	})

	It("builds the full stage chain", func() {
		p, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(HaveLen(10))

		out := pipelineJSON(p)
		Expect(out).To(ContainSubstring(`"$addFields"`))
		Expect(out).To(ContainSubstring(`"$match"`))
		Expect(out).To(ContainSubstring(`"$lookup"`))
		Expect(out).To(ContainSubstring(`"$group"`))
		Expect(out).To(ContainSubstring(`"$project"`))
		Expect(out).To(ContainSubstring(`"$facet"`))
	})

	It("remaps both legacy zone aliases before localization", func() {
		p, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).NotTo(HaveOccurred())

		out := pipelineJSON(p)
		Expect(out).To(ContainSubstring(`"Europe/Kyiv"`))
		Expect(out).To(ContainSubstring(`"Europe/Kiev"`))
		Expect(out).To(ContainSubstring(`"America/Ciudad_Juarez"`))
		Expect(out).To(ContainSubstring(`"America/Denver"`))
		Expect(out).To(ContainSubstring(`"default":"$timezone"`))
	})

	It("makes both calendar dates inclusive in the window match", func() {
		p, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).NotTo(HaveOccurred())

		out := pipelineJSON(p)
		Expect(out).To(ContainSubstring(`"$gte":"2024-10-01 00:00:00"`))
		Expect(out).To(ContainSubstring(`"$lte":"2024-12-31 23:59:59"`))
	})

	It("accepts full timestamps and keeps only the calendar date", func() {
		opts.StartDate = "2024-10-01 09:30:00"
		opts.EndDate = "2024-12-31 23:59:59"
		p, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).NotTo(HaveOccurred())

		out := pipelineJSON(p)
		Expect(out).To(ContainSubstring(`"$gte":"2024-10-01 00:00:00"`))
		Expect(out).To(ContainSubstring(`"$lte":"2024-12-31 23:59:59"`))
	})

	It("joins users and feedback by the configured collection names", func() {
		p, err := chathistory.BuildUserReportPipeline(opts, "users-prod", "feedback-prod")
		Expect(err).NotTo(HaveOccurred())

		out := pipelineJSON(p)
		Expect(out).To(ContainSubstring(`"from":"users-prod"`))
		Expect(out).To(ContainSubstring(`"from":"feedback-prod"`))
		Expect(out).To(ContainSubstring(`"preserveNullAndEmptyArrays":true`))
	})

	It("counts only exactly-empty citations", func() {
		p, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).NotTo(HaveOccurred())

		out := pipelineJSON(p)
		Expect(out).To(ContainSubstring(`"$eq":["$citations",[]]`))
		Expect(out).To(ContainSubstring(`"$eq":["$citations",""]`))
	})

	It("sorts the page by the lowered field and direction", func() {
		opts.SortBy = "Total_Questions"
		opts.Order = chathistory.Descending
		p, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).NotTo(HaveOccurred())

		out := pipelineJSON(p)
		Expect(out).To(ContainSubstring(`"$sort":{"total_questions":-1}`))
		Expect(out).To(ContainSubstring(`"$count":"user_id"`))
	})

	It("rejects unknown sort fields eagerly", func() {
		opts.SortBy = "favorite_color"
		_, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).To(MatchError(chathistory.ErrUnknownSortField))
	})

	It("rejects malformed dates", func() {
		opts.StartDate = "10/01/2024"
		_, err := chathistory.BuildUserReportPipeline(opts, "users", "feedback")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("parse date"))
	})
})

var _ = Describe("CanonicalZone", func() {
	It("remaps the legacy aliases", func() {
		Expect(chathistory.CanonicalZone("Europe/Kyiv")).To(Equal("Europe/Kiev"))
		Expect(chathistory.CanonicalZone("America/Ciudad_Juarez")).To(Equal("America/Denver"))
	})

	It("passes every other zone through", func() {
		Expect(chathistory.CanonicalZone("Asia/Seoul")).To(Equal("Asia/Seoul"))
		Expect(chathistory.CanonicalZone("UTC")).To(Equal("UTC"))
	})

	It("localizes identically under the alias and its canonical zone", func() {
		legacy, err := time.LoadLocation("Europe/Kyiv")
		Expect(err).NotTo(HaveOccurred())
		canonical, err := time.LoadLocation(chathistory.CanonicalZone("Europe/Kyiv"))
		Expect(err).NotTo(HaveOccurred())

		instant := time.Date(2024, 10, 5, 12, 0, 0, 0, time.UTC)
		layout := "2006-01-02 15:04:05"
		Expect(instant.In(canonical).Format(layout)).To(Equal(instant.In(legacy).Format(layout)))
	})
})

var _ = Describe("ParseOrder", func() {
	It("is case-insensitive for ascending", func() {
		Expect(chathistory.ParseOrder("asc")).To(Equal(chathistory.Ascending))
		Expect(chathistory.ParseOrder("ASC")).To(Equal(chathistory.Ascending))
	})

	It("treats everything else as descending", func() {
		Expect(chathistory.ParseOrder("desc")).To(Equal(chathistory.Descending))
		Expect(chathistory.ParseOrder("")).To(Equal(chathistory.Descending))
	})
})
