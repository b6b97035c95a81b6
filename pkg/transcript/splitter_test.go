package transcript_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minuteshq/minutes/pkg/transcript"
)

var _ = Describe("Split", func() {
	const meeting = "mtg"

	It("yields one whole-text episode for single-segment anchor spans", func() {
		text := "A. B. C."
		plan := []transcript.PlanSegment{{
			Order:       1,
			Title:       "All of it",
			StartAnchor: "A.",
			EndAnchor:   "C.",
		}}

		episodes := transcript.Split(text, meeting, plan)

		Expect(episodes).To(HaveLen(1))
		Expect(episodes[0].EpisodeID).To(Equal("mtg:0"))
		Expect(episodes[0].StartChar).To(Equal(0))
		Expect(episodes[0].EndChar).To(Equal(len(text)))
		Expect(episodes[0].Text).To(Equal(text))
	})

	It("keeps episodes ordered and non-overlapping", func() {
		text := "Alpha kickoff begins now. We discuss budget today. Beta review starts here. We close the meeting."
		plan := []transcript.PlanSegment{
			{Order: 1, Title: "Kickoff", StartAnchor: "Alpha kickoff", EndAnchor: "budget today."},
			{Order: 2, Title: "Review", StartAnchor: "Beta review", EndAnchor: "the meeting."},
		}

		episodes := transcript.Split(text, meeting, plan)

		Expect(episodes).To(HaveLen(2))
		Expect(episodes[0].Text).To(ContainSubstring("Alpha kickoff"))
		Expect(episodes[1].Text).To(ContainSubstring("Beta review"))
		for i, episode := range episodes {
			Expect(episode.StartChar).To(BeNumerically("<=", episode.EndChar))
			Expect(episode.Text).To(Equal(text[episode.StartChar:episode.EndChar]))
			if i > 0 {
				Expect(episodes[i-1].EndChar).To(BeNumerically("<=", episode.StartChar))
			}
		}
	})

	It("ends an episode at its end anchor's sentence", func() {
		text := "Alpha kickoff begins now. We discuss budget today. Beta review starts here. We close the meeting."
		plan := []transcript.PlanSegment{
			{Order: 1, Title: "Kickoff", StartAnchor: "Alpha kickoff", EndAnchor: "budget today."},
			{Order: 2, Title: "Review", StartAnchor: "Beta review", EndAnchor: "the meeting."},
		}

		episodes := transcript.Split(text, meeting, plan)

		Expect(episodes).To(HaveLen(2))
		Expect(episodes[0].Text).NotTo(ContainSubstring("Beta review"))
		Expect(strings.TrimSpace(episodes[0].Text)).To(HaveSuffix("budget today."))
		Expect(episodes[1].Text).To(HavePrefix("Beta review"))
	})

	It("matches anchors case-insensitively at their first occurrence", func() {
		text := "Alpha kickoff begins now. We close. Alpha kickoff again later."
		plan := []transcript.PlanSegment{{
			Order:       1,
			StartAnchor: "ALPHA KICKOFF",
			EndAnchor:   "we close.",
		}}

		episodes := transcript.Split(text, meeting, plan)

		Expect(episodes).To(HaveLen(1))
		Expect(episodes[0].StartChar).To(Equal(0))
	})

	It("widens to full-transcript boundaries when anchors are absent", func() {
		text := "Alpha kickoff begins now. We close the meeting."
		plan := []transcript.PlanSegment{{
			Order:       1,
			Summary:     "kept",
			StartAnchor: "does not appear",
			EndAnchor:   "also missing",
		}}

		episodes := transcript.Split(text, meeting, plan)

		Expect(episodes).To(HaveLen(1))
		Expect(episodes[0].StartChar).To(Equal(0))
		Expect(episodes[0].EndChar).To(Equal(len(text)))
		Expect(episodes[0].Summary).To(Equal("kept"))
	})

	It("degrades an empty plan to a single whole-transcript episode", func() {
		text := "Alpha kickoff begins now. We close the meeting."

		episodes := transcript.Split(text, meeting, nil)

		Expect(episodes).To(HaveLen(1))
		Expect(episodes[0].Text).To(Equal(text))
		Expect(episodes[0].Summary).To(BeEmpty())
		Expect(episodes[0].Topics).To(BeEmpty())
	})

	It("carries project affinity onto episodes", func() {
		text := "Alpha kickoff begins now. We close the meeting."
		plan := []transcript.PlanSegment{{
			Order: 1,
			Projects: []transcript.ProjectRef{
				{Alias: "Piggy Bank", Confidence: 0.9},
				{Alias: "Atlas", Confidence: 0.4},
			},
			StartAnchor: "Alpha",
		}}

		episodes := transcript.Split(text, meeting, plan)

		Expect(episodes).To(HaveLen(1))
		Expect(episodes[0].ProjectAffinity).To(HaveKeyWithValue("Piggy Bank", 0.9))
		Expect(episodes[0].ProjectAffinity).To(HaveKeyWithValue("Atlas", 0.4))
	})

	It("processes segments in plan order regardless of slice order", func() {
		text := "Alpha kickoff begins now. Beta review starts here. We close the meeting."
		plan := []transcript.PlanSegment{
			{Order: 2, StartAnchor: "Beta review", EndAnchor: "the meeting."},
			{Order: 1, StartAnchor: "Alpha kickoff", EndAnchor: "starts here."},
		}

		episodes := transcript.Split(text, meeting, plan)

		Expect(len(episodes)).To(BeNumerically(">=", 1))
		Expect(episodes[0].Text).To(ContainSubstring("Alpha kickoff"))
		Expect(strings.HasPrefix(episodes[0].Text, "Alpha")).To(BeTrue())
	})
})
