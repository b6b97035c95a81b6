package transcript_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/pkg/storage/inmemory"
	"github.com/minuteshq/minutes/pkg/transcript"
	testutils "github.com/minuteshq/minutes/pkg/utils/test"
)

const planResponse = `[
  {
    "order": 1,
    "title": "Kickoff",
    "summary": "The meeting opens.",
    "topics": ["kickoff"],
    "projects": [{"alias": "Piggy Bank", "confidence": 0.9}],
    "start_anchor": "Alpha kickoff",
    "end_anchor": "budget today.",
    "confidence": 0.8
  }
]`

var _ = Describe("Planner", func() {
	var (
		gen     *testutils.MockGenerator
		cache   *inmemory.Driver
		planner *transcript.Planner
		ctx     context.Context
	)

	BeforeEach(func() {
		gen = testutils.NewMockGenerator(planResponse)
		cache = inmemory.NewDriver(true)
		planner = transcript.NewPlanner(gen, cache, zap.NewNop())
		ctx = context.Background()
	})

	It("parses and validates the generated plan", func() {
		plan, err := planner.Plan(ctx, "mtg", "Alpha kickoff begins now.", false)
		Expect(err).NotTo(HaveOccurred())

		Expect(plan).To(HaveLen(1))
		Expect(plan[0].Title).To(Equal("Kickoff"))
		Expect(plan[0].Order).To(Equal(1))
		Expect(plan[0].Confidence).To(Equal(0.8))
		Expect(plan[0].Projects).To(HaveLen(1))
	})

	It("calls the generator at most once per transcript hash", func() {
		_, err := planner.Plan(ctx, "mtg", "Same transcript.", false)
		Expect(err).NotTo(HaveOccurred())
		_, err = planner.Plan(ctx, "mtg", "Same transcript.", false)
		Expect(err).NotTo(HaveOccurred())

		Expect(gen.Calls).To(Equal(1))
	})

	It("re-plans when the transcript changes", func() {
		_, err := planner.Plan(ctx, "mtg", "First version.", false)
		Expect(err).NotTo(HaveOccurred())
		_, err = planner.Plan(ctx, "mtg", "Second version.", false)
		Expect(err).NotTo(HaveOccurred())

		Expect(gen.Calls).To(Equal(2))
	})

	It("re-plans when forced despite a fresh cache", func() {
		_, err := planner.Plan(ctx, "mtg", "Same transcript.", false)
		Expect(err).NotTo(HaveOccurred())
		_, err = planner.Plan(ctx, "mtg", "Same transcript.", true)
		Expect(err).NotTo(HaveOccurred())

		Expect(gen.Calls).To(Equal(2))
	})

	It("degrades to an empty plan on an empty response without caching", func() {
		gen.Responses = []string{""}

		plan, err := planner.Plan(ctx, "mtg", "Some transcript.", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan).To(BeEmpty())

		_, _, ok, err := cache.GetPlan(ctx, "mtg")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("degrades to an empty plan when generation fails", func() {
		gen.Fail = true

		plan, err := planner.Plan(ctx, "mtg", "Some transcript.", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan).To(BeEmpty())
	})

	It("skips malformed segments and defaults missing fields", func() {
		gen.Responses = []string{`[
  {},
  {"title": "Usable", "start_anchor": "a", "end_anchor": "b"}
]`}

		plan, err := planner.Plan(ctx, "mtg", "Some transcript.", false)
		Expect(err).NotTo(HaveOccurred())

		Expect(plan).To(HaveLen(1))
		Expect(plan[0].Title).To(Equal("Usable"))
		Expect(plan[0].Order).To(Equal(1))
		Expect(plan[0].Confidence).To(Equal(0.5))
	})

	It("accepts plans wrapped in a segments envelope", func() {
		gen.Responses = []string{`{"segments": [{"title": "Wrapped", "start_anchor": "a", "end_anchor": "b"}]}`}

		plan, err := planner.Plan(ctx, "mtg", "Some transcript.", false)
		Expect(err).NotTo(HaveOccurred())

		Expect(plan).To(HaveLen(1))
		Expect(plan[0].Title).To(Equal("Wrapped"))
	})

	It("strips markdown fences from the response", func() {
		gen.Responses = []string{"```json\n" + planResponse + "\n```"}

		plan, err := planner.Plan(ctx, "mtg", "Some transcript.", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan).To(HaveLen(1))
	})
})
