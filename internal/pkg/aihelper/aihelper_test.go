package aihelper_test

import (
	"context"
	"time"

	"chatadmin/internal/pkg/aihelper"
	"chatadmin/internal/pkg/retry"
	"chatadmin/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
)

const (
	endpoint       = "https://testsvc.openai.azure.com"
	chatPath       = "/openai/deployments/gpt-chat/chat/completions"
	embeddingsPath = "/openai/deployments/gpt-emb/embeddings"
)

func completionPayload(content string) string {
	return `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1730000000,
		"model": "gpt-4o-mini",
		"choices": [
			{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "` + content + `"}}
		],
		"usage": {"prompt_tokens": 25, "completion_tokens": 10, "total_tokens": 35}
	}`
}

var _ = Describe("Helper", func() {
	var helper *aihelper.Helper

	BeforeEach(func() {
		testhelpers.Activate()

		helper = aihelper.New(endpoint, "test-key", "gpt-chat", "gpt-emb", zerolog.Nop())
		helper.Policy = retry.Policy{
			MaxAttempts: 2,
			MinDelay:    time.Millisecond,
			MaxDelay:    2 * time.Millisecond,
		}
	})

	AfterEach(func() {
		testhelpers.Deactivate()
	})

	Describe("Summarize", func() {
		It("sends the fixed completion parameters and the guide prompt", func() {
			testhelpers.New(endpoint).
				Post(chatPath).
				MatchJSON(`{
					"model": "gpt-chat",
					"temperature": 0.7,
					"max_tokens": 1000,
					"n": 1,
					"messages": [{"role": "user", "content": "Provide a comprehensive guide of the given text. Include all step-by-step instructions, definitions, and warranties. How to set a seam allowance."}]
				}`).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(completionPayload("Guide."))

			out, err := helper.Summarize(context.Background(), "How to set a seam allowance.")
			Expect(err).NotTo(HaveOccurred())
			Expect(testhelpers.IsDone()).To(BeTrue())
			Expect(out).To(Equal("Guide."))
		})

		It("returns the whitespace-collapsed completion", func() {
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(completionPayload(`Seam  allowance   explained.`))

			out, err := helper.Summarize(context.Background(), "How to set a seam allowance.")
			Expect(err).NotTo(HaveOccurred())
			Expect(testhelpers.IsDone()).To(BeTrue())
			Expect(out).To(Equal("Seam allowance explained."))
		})

		It("retries a provider failure and succeeds on the next attempt", func() {
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(500).
				Header("Content-Type", "application/json").
				BodyString(`{"error": {"message": "upstream unavailable"}}`)
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(completionPayload("Recovered."))

			out, err := helper.Summarize(context.Background(), "retryable article")
			Expect(err).NotTo(HaveOccurred())
			Expect(testhelpers.IsDone()).To(BeTrue())
			Expect(out).To(Equal("Recovered."))
		})

		It("propagates the provider error once attempts are exhausted", func() {
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(500).
				Header("Content-Type", "application/json").
				BodyString(`{"error": {"message": "upstream unavailable"}}`)
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(500).
				Header("Content-Type", "application/json").
				BodyString(`{"error": {"message": "upstream unavailable"}}`)

			_, err := helper.Summarize(context.Background(), "doomed article")
			Expect(err).To(HaveOccurred())
			Expect(testhelpers.IsDone()).To(BeTrue())
		})

		It("treats an empty completion as a provider failure", func() {
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(completionPayload(""))
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(completionPayload(""))

			_, err := helper.Summarize(context.Background(), "empty answer")
			Expect(err).To(MatchError(ContainSubstring("empty response")))
		})
	})

	Describe("GenerateFAQQuestions", func() {
		It("splits the completion into one question per line", func() {
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(completionPayload(`How do I export?\nHow do I import?\n`))

			questions, err := helper.GenerateFAQQuestions(context.Background(), "Export guide.", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(questions).To(Equal([]string{"How do I export?", "How do I import?"}))
		})
	})

	Describe("Outline", func() {
		It("outlines pages under the ceiling", func() {
			testhelpers.New(endpoint).
				Post(chatPath).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(completionPayload("1. Intro"))

			out, err := helper.Outline(context.Background(), "Short page body.")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("1. Intro"))
		})
	})

	Describe("GenerateEmbeddings", func() {
		It("returns the embedding vector", func() {
			testhelpers.New(endpoint).
				Post(embeddingsPath).
				Reply(200).
				Header("Content-Type", "application/json").
				BodyString(`{
					"object": "list",
					"model": "text-embedding-ada-002",
					"data": [{"object": "embedding", "index": 0, "embedding": [0.125, -0.5]}],
					"usage": {"prompt_tokens": 4, "total_tokens": 4}
				}`)

			vector, err := helper.GenerateEmbeddings(context.Background(), "seam allowance")
			Expect(err).NotTo(HaveOccurred())
			Expect(testhelpers.IsDone()).To(BeTrue())
			Expect(vector).To(Equal([]float64{0.125, -0.5}))
		})
	})
})
