package transcript

import "strings"

// Sentence terminators and whitespace are matched as ASCII bytes; UTF-8
// continuation bytes never collide with ASCII values, so byte scanning is
// safe for multilingual transcripts.

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// splitSentences splits text on sentence terminators followed by
// whitespace, keeping the terminator with its sentence. The trailing
// fragment is returned even without a terminator.
func splitSentences(text string) []string {
	var sentences []string

	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		// A run of terminators ("..." or "?!") counts as one boundary.
		for i+1 < len(text) && isTerminator(text[i+1]) {
			i++
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}

		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

// wordCount returns the number of whitespace-separated words in s.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// snapForward moves pos forward to the next sentence start: the first
// position after a sentence terminator and its trailing whitespace run.
// Position 0 and the end of text are already sentence boundaries. Returns
// len(text) when no boundary exists at or after pos.
func snapForward(text string, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(text) {
		return len(text)
	}

	// Already at a sentence start: preceded by whitespace that follows a
	// terminator.
	k := pos - 1
	for k >= 0 && isSpace(text[k]) {
		k--
	}
	if k >= 0 && k < pos-1 && isTerminator(text[k]) {
		return pos
	}

	// Immediately after a terminator: the next sentence starts after the
	// whitespace run.
	if isTerminator(text[pos-1]) && isSpace(text[pos]) {
		j := pos
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		return j
	}

	for i := pos; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		for i+1 < len(text) && isTerminator(text[i+1]) {
			i++
		}
		if i+1 >= len(text) {
			return len(text)
		}
		if !isSpace(text[i+1]) {
			continue
		}
		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		return j
	}

	return len(text)
}
