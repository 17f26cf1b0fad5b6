package report_test

import (
	"errors"
	"os"
	"path/filepath"

	"chatadmin/internal/models"
	"chatadmin/internal/pkg/report"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("Writer", func() {
	var dir string

	sampleRows := func() []report.Row {
		return []report.Row{
			report.FieldsOf(models.UserReportRow{
				UserID:                  "u1",
				Name:                    "Ada",
				TotalQuestions:          3,
				TotalAnswersNoCitations: 1,
				TotalThumbsUp:           2,
				TotalVisits:             2,
				Timezone:                "Europe/Kiev",
			}),
			report.FieldsOf(models.UserReportRow{
				UserID:         "u2",
				Name:           "Grace",
				TotalQuestions: 1,
				TotalVisits:    1,
				Timezone:       "America/Denver",
			}),
		}
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("WriteJSON", func() {
		It("writes one key-ordered object per row", func() {
			path := filepath.Join(dir, "users.json")
			Expect(report.WriteJSON(path, sampleRows())).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`[` +
				`{"user_id":"u1","name":"Ada","total_questions":3,"total_answers_no_citations":1,` +
				`"total_thumbs_up":2,"total_thumbs_down":0,"total_visits":2,"timezone":"Europe/Kiev"},` +
				`{"user_id":"u2","name":"Grace","total_questions":1,"total_answers_no_citations":0,` +
				`"total_thumbs_up":0,"total_thumbs_down":0,"total_visits":1,"timezone":"America/Denver"}` +
				`]`))
		})

		It("overwrites an existing file", func() {
			path := filepath.Join(dir, "users.json")
			Expect(os.WriteFile(path, []byte("stale"), 0644)).To(Succeed())
			Expect(report.WriteJSON(path, nil)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("[]"))
		})

		It("is byte-identical across runs with the same rows", func() {
			first := filepath.Join(dir, "first.json")
			second := filepath.Join(dir, "second.json")
			Expect(report.WriteJSON(first, sampleRows())).To(Succeed())
			Expect(report.WriteJSON(second, sampleRows())).To(Succeed())

			a, err := os.ReadFile(first)
			Expect(err).NotTo(HaveOccurred())
			b, err := os.ReadFile(second)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})
	})

	Describe("WriteXLSX", func() {
		It("writes headers from the first row and values in column order", func() {
			path := filepath.Join(dir, "users.xlsx")
			Expect(report.WriteXLSX(path, sampleRows())).To(Succeed())

			f, err := excelize.OpenFile(path)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			header, err := f.GetCellValue(report.SheetName, "A1")
			Expect(err).NotTo(HaveOccurred())
			Expect(header).To(Equal("user_id"))

			lastHeader, err := f.GetCellValue(report.SheetName, "H1")
			Expect(err).NotTo(HaveOccurred())
			Expect(lastHeader).To(Equal("timezone"))

			name, err := f.GetCellValue(report.SheetName, "B3")
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("Grace"))

			visits, err := f.GetCellValue(report.SheetName, "G2")
			Expect(err).NotTo(HaveOccurred())
			Expect(visits).To(Equal("2"))
		})

		It("fails with SchemaMismatch before writing when key sets differ", func() {
			path := filepath.Join(dir, "users.xlsx")
			rows := sampleRows()
			rows = append(rows, report.Row{{Key: "unexpected", Value: 1}})

			err := report.WriteXLSX(path, rows)
			var mismatch *report.SchemaMismatchError
			Expect(err).To(HaveOccurred())
			Expect(errors.As(err, &mismatch)).To(BeTrue())
			Expect(mismatch.RowIndex).To(Equal(2))

			_, statErr := os.Stat(path)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})
})
