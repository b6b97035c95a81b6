package transcript_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minuteshq/minutes/pkg/transcript"
)

var _ = Describe("Chunk", func() {
	It("returns a single piece when the episode fits", func() {
		pieces := transcript.Chunk("A short episode. Nothing more.", "mtg:0", 220, 40)

		Expect(pieces).To(HaveLen(1))
		Expect(pieces[0].ChunkID).To(Equal("mtg:0:0"))
		Expect(pieces[0].Text).To(Equal("A short episode. Nothing more."))
	})

	It("keeps every piece within the word budget", func() {
		sentence := "one two three four five."
		text := strings.Repeat(sentence+" ", 40)

		pieces := transcript.Chunk(text, "mtg:0", 20, 5)

		Expect(len(pieces)).To(BeNumerically(">", 1))
		for _, piece := range pieces {
			Expect(len(strings.Fields(piece.Text))).To(BeNumerically("<=", 20))
		}
	})

	It("assigns sequential ordered ids", func() {
		sentence := "one two three four five."
		text := strings.Repeat(sentence+" ", 40)

		pieces := transcript.Chunk(text, "mtg:3", 20, 5)

		for i, piece := range pieces {
			Expect(piece.ChunkID).To(Equal(fmt.Sprintf("mtg:3:%d", i)))
		}
	})

	It("seeds each piece with the previous piece's trailing sentences", func() {
		sentence := "one two three four five."
		text := strings.Repeat(sentence+" ", 40)

		pieces := transcript.Chunk(text, "mtg:0", 20, 5)

		for i := 1; i < len(pieces); i++ {
			Expect(pieces[i].Text).To(HavePrefix(sentence))
		}
	})

	It("never splits a sentence longer than the budget", func() {
		long := strings.TrimSpace(strings.Repeat("word ", 30))

		pieces := transcript.Chunk(long, "mtg:0", 10, 3)

		Expect(pieces).To(HaveLen(1))
		Expect(pieces[0].Text).To(Equal(long))
	})

	It("falls back to default sizes for non-positive budgets", func() {
		pieces := transcript.Chunk("Tiny text.", "mtg:0", 0, -1)

		Expect(pieces).To(HaveLen(1))
	})
})
