package query_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/eventstream"
	"github.com/minuteshq/minutes/pkg/intent"
	"github.com/minuteshq/minutes/pkg/query"
	testutils "github.com/minuteshq/minutes/pkg/utils/test"
	"github.com/minuteshq/minutes/pkg/vector"
)

const serviceIntentResponse = `{"intent": "project_summary", "projects": [{"alias": "Piggy Bank", "confidence": 0.9}], "confidence": 0.8}`

var _ = Describe("Service", func() {
	var (
		vectors   *testutils.MockVectorDriver
		gen       *testutils.MockGenerator
		publisher *testutils.MockPublisher
		sessions  *intent.SessionStore
		service   *query.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		vectors = testutils.NewMockVectorDriver()
		gen = testutils.NewMockGenerator(serviceIntentResponse, "Summary: it shipped.")
		publisher = testutils.NewMockPublisher()

		var err error
		sessions, err = intent.NewSessionStore(time.Minute)
		Expect(err).NotTo(HaveOccurred())

		logger := zap.NewNop()
		parser := intent.NewParser(gen, logger)
		executor := query.NewExecutor(vectors, gen, query.ExecutorConfig{}, logger)
		service = query.NewService(parser, sessions, executor, publisher, logger)
		ctx = context.Background()
	})

	AfterEach(func() {
		sessions.Close()
	})

	It("parses, retrieves, and synthesizes an answer", func() {
		vectors.Namespaces[7] = true
		vectors.Results = []vector.Result{{
			Text:     "We shipped piggy bank.",
			Distance: 0.2,
			Metadata: map[string]string{vector.MetaPrimary: "Piggy Bank"},
		}}

		answer, err := service.AnswerQuery(ctx, 7, "status of piggy bank?")

		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Summary: it shipped."))
	})

	It("remembers the parsed intent for follow-ups", func() {
		vectors.Namespaces[7] = true

		_, err := service.AnswerQuery(ctx, 7, "status of piggy bank?")
		Expect(err).NotTo(HaveOccurred())

		last, ok := sessions.Last(7)
		Expect(ok).To(BeTrue())
		Expect(last.Intent).To(Equal(intent.CategoryProjectSummary))
	})

	It("publishes a query-answered event", func() {
		vectors.Namespaces[7] = true
		vectors.Results = []vector.Result{{Text: "snippet", Distance: 0.1}}

		_, err := service.AnswerQuery(ctx, 7, "status of piggy bank?")
		Expect(err).NotTo(HaveOccurred())

		Expect(publisher.Events).To(HaveLen(1))
		event := publisher.Events[0]
		Expect(event.EventType).To(Equal(eventstream.EventTypeQueryAnswered))
		Expect(event.UserID).To(Equal(int64(7)))
		Expect(event.Query).NotTo(BeNil())
		Expect(event.Query.Intent).To(Equal(intent.CategoryProjectSummary))
		Expect(event.Query.Answered).To(BeTrue())
	})

	It("reports an unanswered query in the event", func() {
		_, err := service.AnswerQuery(ctx, 7, "status of piggy bank?")
		Expect(err).NotTo(HaveOccurred())

		Expect(publisher.Events).To(HaveLen(1))
		Expect(publisher.Events[0].Query.Answered).To(BeFalse())
	})
})

var _ = Describe("NoAnswerMessage", func() {
	It("answers in English by default", func() {
		Expect(query.NoAnswerMessage("anything new?")).To(ContainSubstring("Nothing relevant"))
	})

	It("answers in Russian for Cyrillic queries", func() {
		Expect(query.NoAnswerMessage("что нового?")).To(ContainSubstring("встречах"))
	})
})
