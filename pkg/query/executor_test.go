package query_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/intent"
	"github.com/minuteshq/minutes/pkg/query"
	testutils "github.com/minuteshq/minutes/pkg/utils/test"
	"github.com/minuteshq/minutes/pkg/vector"
)

var _ = Describe("Executor", func() {
	var (
		vectors  *testutils.MockVectorDriver
		gen      *testutils.MockGenerator
		executor *query.Executor
		ctx      context.Context
	)

	BeforeEach(func() {
		vectors = testutils.NewMockVectorDriver()
		gen = testutils.NewMockGenerator("Summary: something happened.")
		executor = query.NewExecutor(vectors, gen, query.ExecutorConfig{}, zap.NewNop())
		ctx = context.Background()
	})

	indexed := func(userID int64, distance float32) {
		vectors.Namespaces[userID] = true
		vectors.Results = []vector.Result{{
			Text:     "We decided to ship the piggy bank feature.",
			Distance: distance,
			Metadata: map[string]string{
				vector.MetaMeetingDate: "2026-08-20",
				vector.MetaPrimary:     "Piggy Bank",
				vector.MetaTopics:      "decisions",
			},
		}}
	}

	It("returns no answer without contacting the generator when nothing is indexed", func() {
		answer, snippets, err := executor.Answer(ctx, 1, intent.Fallback(""), "anything?")

		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(BeEmpty())
		Expect(snippets).To(BeZero())
		Expect(gen.Calls).To(BeZero())
	})

	It("synthesizes a trimmed answer from relevant snippets", func() {
		indexed(1, 0.2)
		gen.Responses = []string{"  The team shipped it.  "}

		answer, snippets, err := executor.Answer(ctx, 1, intent.Fallback(""), "what happened?")

		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("The team shipped it."))
		Expect(snippets).To(Equal(1))
	})

	It("filters out candidates beyond the similarity threshold", func() {
		indexed(1, 0.9)

		answer, snippets, err := executor.Answer(ctx, 1, intent.Fallback(""), "what happened?")

		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(BeEmpty())
		Expect(snippets).To(BeZero())
		Expect(gen.Calls).To(BeZero())
	})

	It("returns no answer when synthesis fails", func() {
		indexed(1, 0.2)
		gen.Fail = true

		answer, _, err := executor.Answer(ctx, 1, intent.Fallback(""), "what happened?")

		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(BeEmpty())
	})

	It("propagates vector store failures", func() {
		vectors.FailQuery = true

		_, _, err := executor.Answer(ctx, 1, intent.Fallback(""), "what happened?")

		Expect(err).To(MatchError(vector.ErrStore))
	})

	Describe("adaptive retrieval count", func() {
		It("widens for multi-project, category, and long queries up to the cap", func() {
			indexed(1, 0.2)
			parsed := intent.ParsedIntent{
				Intent: intent.CategoryActionItems,
				Projects: []intent.ProjectRef{
					{Alias: "Piggy Bank", Confidence: 0.9},
					{Alias: "Atlas", Confidence: 0.8},
				},
				DateRanges: []intent.DateRange{{Start: "2026-08-01"}},
			}
			message := strings.Repeat("word ", 20)

			_, _, err := executor.Answer(ctx, 1, parsed, message)
			Expect(err).NotTo(HaveOccurred())

			// base 6 + 4 multi-project + 4 action_items + 2 long query
			Expect(vectors.LastTopK).To(Equal(16))
		})

		It("adds for multi-range date queries and caps at the maximum", func() {
			indexed(1, 0.2)
			parsed := intent.ParsedIntent{
				Intent: intent.CategoryTopicsOverview,
				Projects: []intent.ProjectRef{
					{Alias: "Piggy Bank", Confidence: 0.9},
					{Alias: "Atlas", Confidence: 0.8},
				},
				DateRanges: []intent.DateRange{
					{Start: "2026-07-01"},
					{Start: "2026-08-01"},
				},
			}
			message := strings.Repeat("word ", 20)

			_, _, err := executor.Answer(ctx, 1, parsed, message)
			Expect(err).NotTo(HaveOccurred())

			// 6+4+4+4+2 = 20, already at the cap
			Expect(vectors.LastTopK).To(Equal(20))
		})

		It("uses the base count for simple queries", func() {
			indexed(1, 0.2)

			_, _, err := executor.Answer(ctx, 1, intent.Fallback(""), "short question?")
			Expect(err).NotTo(HaveOccurred())

			Expect(vectors.LastTopK).To(Equal(6))
		})
	})

	Describe("metadata filter", func() {
		It("keeps confident project mentions, normalized", func() {
			indexed(1, 0.2)
			parsed := intent.ParsedIntent{
				Intent: intent.CategoryProjectSummary,
				Projects: []intent.ProjectRef{
					{Alias: "Piggy Bank", Confidence: 0.9},
					{Alias: "Maybe This One", Confidence: 0.3},
				},
			}

			_, _, err := executor.Answer(ctx, 1, parsed, "status of piggy bank?")
			Expect(err).NotTo(HaveOccurred())

			Expect(vectors.LastFilter).NotTo(BeNil())
			Expect(vectors.LastFilter.ProjectsNorm).To(Equal([]string{"piggy_bank"}))
		})

		It("honors only the first date range", func() {
			indexed(1, 0.2)
			parsed := intent.ParsedIntent{
				Intent: intent.CategoryDateSummary,
				DateRanges: []intent.DateRange{
					{Start: "2026-08-01"},
					{Start: "2026-01-01"},
				},
			}

			_, _, err := executor.Answer(ctx, 1, parsed, "what happened in august?")
			Expect(err).NotTo(HaveOccurred())

			Expect(vectors.LastFilter).NotTo(BeNil())
			Expect(vectors.LastFilter.DateFrom).To(Equal("2026-08-01"))
		})

		It("passes no filter for unconstrained intents", func() {
			indexed(1, 0.2)

			_, _, err := executor.Answer(ctx, 1, intent.Fallback(""), "anything?")
			Expect(err).NotTo(HaveOccurred())

			Expect(vectors.LastFilter).To(BeNil())
		})
	})

	Describe("synthesis prompt", func() {
		It("annotates snippets with provenance and relevance", func() {
			indexed(1, 0.25)

			_, _, err := executor.Answer(ctx, 1, intent.Fallback(""), "what happened?")
			Expect(err).NotTo(HaveOccurred())

			Expect(gen.Prompts).To(HaveLen(1))
			prompt := gen.Prompts[0]
			Expect(prompt).To(ContainSubstring("2026-08-20"))
			Expect(prompt).To(ContainSubstring("Piggy Bank"))
			Expect(prompt).To(ContainSubstring("relevance: 0.75"))
			Expect(prompt).To(ContainSubstring("Never invent information"))
		})

		It("uses the Russian template for Cyrillic queries", func() {
			indexed(1, 0.2)

			_, _, err := executor.Answer(ctx, 1, intent.Fallback(""), "Что решили по проекту?")
			Expect(err).NotTo(HaveOccurred())

			Expect(gen.Prompts[0]).To(ContainSubstring("Резюме"))
		})

		It("adds a focus directive for action item intents", func() {
			indexed(1, 0.2)
			parsed := intent.ParsedIntent{Intent: intent.CategoryActionItems}

			_, _, err := executor.Answer(ctx, 1, parsed, "my action items?")
			Expect(err).NotTo(HaveOccurred())

			Expect(gen.Prompts[0]).To(ContainSubstring("action items"))
		})

		It("adds a focus directive when the query mentions requirements", func() {
			indexed(1, 0.2)

			_, _, err := executor.Answer(ctx, 1, intent.Fallback(""), "list the requirements we agreed")
			Expect(err).NotTo(HaveOccurred())

			Expect(gen.Prompts[0]).To(ContainSubstring("stated requirements"))
		})
	})
})
