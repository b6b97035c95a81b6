package intent_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/intent"
	testutils "github.com/minuteshq/minutes/pkg/utils/test"
)

var _ = Describe("Parser", func() {
	var (
		gen    *testutils.MockGenerator
		parser *intent.Parser
		ctx    context.Context
	)

	BeforeEach(func() {
		gen = testutils.NewMockGenerator()
		parser = intent.NewParser(gen, zap.NewNop())
		ctx = context.Background()
	})

	It("parses a well-formed response", func() {
		gen.Responses = []string{`{
  "intent": "project_summary",
  "projects": [{"alias": "Piggy Bank", "confidence": 0.9}],
  "date_ranges": [{"start": "last week", "end": "now"}],
  "topics": ["decisions"],
  "follow_up": false,
  "confidence": 0.85
}`}

		parsed := parser.Parse(ctx, "What did we decide about Piggy Bank last week?", nil)

		Expect(parsed.Intent).To(Equal(intent.CategoryProjectSummary))
		Expect(parsed.Projects).To(HaveLen(1))
		Expect(parsed.Projects[0].Alias).To(Equal("Piggy Bank"))
		Expect(parsed.DateRanges).To(HaveLen(1))
		Expect(parsed.Confidence).To(Equal(0.85))
		Expect(parsed.UncertaintyReason).To(BeEmpty())
	})

	It("strips markdown fences before decoding", func() {
		gen.Responses = []string{"```json\n{\"intent\": \"action_items\", \"confidence\": 0.7}\n```"}

		parsed := parser.Parse(ctx, "action items?", nil)

		Expect(parsed.Intent).To(Equal(intent.CategoryActionItems))
	})

	It("falls back with empty_response when generation fails", func() {
		gen.Fail = true

		parsed := parser.Parse(ctx, "anything", nil)

		Expect(parsed.Intent).To(Equal(intent.CategoryGeneralQuestion))
		Expect(parsed.Confidence).To(BeZero())
		Expect(parsed.UncertaintyReason).To(Equal("empty_response"))
	})

	It("falls back with empty_response for a blank response", func() {
		gen.Responses = []string{"   \n"}

		parsed := parser.Parse(ctx, "anything", nil)

		Expect(parsed.UncertaintyReason).To(Equal("empty_response"))
	})

	It("falls back with parse_error for undecodable output", func() {
		gen.Responses = []string{"sorry, I cannot help with that"}

		parsed := parser.Parse(ctx, "anything", nil)

		Expect(parsed.Intent).To(Equal(intent.CategoryGeneralQuestion))
		Expect(parsed.UncertaintyReason).To(Equal("parse_error"))
	})

	It("coerces unknown categories to general_question", func() {
		gen.Responses = []string{`{"intent": "weather_report", "confidence": 0.9}`}

		parsed := parser.Parse(ctx, "anything", nil)

		Expect(parsed.Intent).To(Equal(intent.CategoryGeneralQuestion))
	})

	It("defaults missing fields to empty collections", func() {
		gen.Responses = []string{`{"intent": "topics_overview"}`}

		parsed := parser.Parse(ctx, "anything", nil)

		Expect(parsed.Projects).NotTo(BeNil())
		Expect(parsed.DateRanges).NotTo(BeNil())
		Expect(parsed.Topics).NotTo(BeNil())
		Expect(parsed.FollowUp).To(BeFalse())
	})

	It("drops project refs without an alias and clamps confidences", func() {
		gen.Responses = []string{`{
  "intent": "project_summary",
  "projects": [{"alias": "", "confidence": 0.9}, {"alias": "Atlas", "confidence": 1.8}],
  "confidence": 2.5
}`}

		parsed := parser.Parse(ctx, "anything", nil)

		Expect(parsed.Projects).To(HaveLen(1))
		Expect(parsed.Projects[0].Confidence).To(Equal(1.0))
		Expect(parsed.Confidence).To(Equal(1.0))
	})

	It("includes the previous intent in the prompt for follow-ups", func() {
		gen.Responses = []string{`{"intent": "date_summary", "follow_up": true, "confidence": 0.7}`}

		previous := intent.ParsedIntent{Intent: intent.CategoryProjectSummary}
		parsed := parser.Parse(ctx, "and the week before?", &previous)

		Expect(parsed.FollowUp).To(BeTrue())
		Expect(gen.Prompts).To(HaveLen(1))
		Expect(gen.Prompts[0]).To(ContainSubstring("previous question"))
		Expect(gen.Prompts[0]).To(ContainSubstring(intent.CategoryProjectSummary))
	})
})
