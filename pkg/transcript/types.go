// Package transcript turns long-form meeting transcripts into bounded,
// semantically addressable units: a segmentation plan proposed by the
// text-generation capability, episodes cut from the transcript by anchor
// search, and overlapping chunks sized for the embedding model.
package transcript

// ProjectRef is a project mention discovered in a plan segment.
type ProjectRef struct {
	Alias      string  `json:"alias"`
	Confidence float64 `json:"confidence"`
	Quote      string  `json:"quote,omitempty"`
}

// PlanSegment is one episode descriptor in a segmentation plan. A plan is
// produced once per segmentation call, is immutable thereafter, and is
// cached keyed by a hash of the transcript text.
type PlanSegment struct {
	// Order is the 1-based position of the segment within the plan.
	Order int `json:"order"`

	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Topics  []string `json:"topics,omitempty"`

	Projects []ProjectRef `json:"projects,omitempty"`

	// StartAnchor and EndAnchor are verbatim transcript excerpts used to
	// locate the segment boundaries.
	StartAnchor string `json:"start_anchor"`
	EndAnchor   string `json:"end_anchor"`

	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`
}

// Episode is a contiguous, non-overlapping span of a transcript covering
// one coherent topic. Episodes from one transcript never overlap and
// appear in transcript order.
type Episode struct {
	// EpisodeID is the meeting id plus the episode's sequence index.
	EpisodeID string

	MeetingID string

	// StartChar and EndChar are 0-based, half-open character offsets
	// into the transcript. EndChar never exceeds the transcript length,
	// and StartChar is never below the previous episode's EndChar.
	StartChar int
	EndChar   int

	// Text is the exact transcript substring [StartChar, EndChar).
	Text string

	Summary string
	Topics  []string

	// ProjectAffinity maps project alias to a confidence score.
	ProjectAffinity map[string]float64
}

// Piece is a chunk of episode text paired with its stable id. Ids take
// the form "<episode_id>:<index>" and are ordered.
type Piece struct {
	ChunkID string
	Text    string
}
