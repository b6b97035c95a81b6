package transcript

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxWords bounds a chunk's word count for the embedding model.
	DefaultMaxWords = 220

	// DefaultOverlapWords bounds the overlap shared by adjacent chunks.
	DefaultOverlapWords = 40
)

// Chunk subdivides an episode's text into bounded, overlapping pieces
// respecting sentence boundaries.
//
// Every piece stays within maxWords unless a single sentence alone
// exceeds the limit — sentences are never split. When a piece closes, the
// next one is seeded with trailing sentences of the closed piece, taken
// most recent first until their cumulative word count would exceed
// overlapWords. Ids are "<episodeID>:<index>", sequential from 0.
func Chunk(episodeText, episodeID string, maxWords, overlapWords int) []Piece {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if overlapWords < 0 || overlapWords >= maxWords {
		overlapWords = DefaultOverlapWords
	}

	if wordCount(episodeText) <= maxWords {
		return []Piece{{
			ChunkID: chunkID(episodeID, 0),
			Text:    episodeText,
		}}
	}

	sentences := splitSentences(episodeText)

	var pieces []Piece
	var buf []string
	bufWords := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		pieces = append(pieces, Piece{
			ChunkID: chunkID(episodeID, len(pieces)),
			Text:    strings.Join(buf, " "),
		})
	}

	for _, sentence := range sentences {
		words := wordCount(sentence)

		if bufWords > 0 && bufWords+words > maxWords {
			flush()
			buf, bufWords = overlapTail(buf, overlapWords)
		}

		buf = append(buf, sentence)
		bufWords += words
	}
	flush()

	return pieces
}

// overlapTail selects trailing sentences of a closed chunk for the next
// chunk's seed, newest first, stopping once the budget would be exceeded.
// The returned slice preserves transcript order.
func overlapTail(sentences []string, budget int) ([]string, int) {
	if budget <= 0 {
		return nil, 0
	}

	total := 0
	cut := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		words := wordCount(sentences[i])
		if total+words > budget {
			break
		}
		total += words
		cut = i
	}

	if cut == len(sentences) {
		return nil, 0
	}

	tail := make([]string, len(sentences)-cut)
	copy(tail, sentences[cut:])
	return tail, total
}

func chunkID(episodeID string, index int) string {
	return fmt.Sprintf("%s:%d", episodeID, index)
}
