package vector

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/minuteshq/minutes/pkg/registry"
)

// Standard metadata keys carried by every indexed chunk.
const (
	MetaMeetingID       = "meeting_id"
	MetaMeetingDate     = "meeting_date"
	MetaEpisodeID       = "episode_id"
	MetaSummary         = "summary"
	MetaTopics          = "topics"
	MetaAffinity        = "project_affinity"
	MetaPrimary         = "primary_project"
	MetaPrimaryNorm     = "primary_project_norm"
	MetaPrimaryScore    = "primary_project_score"
	MetaProjectTags     = "project_tags"
	MetaProjectTagsNorm = "project_tags_norm"
	MetaStartTime       = "start_time"
	MetaEndTime         = "end_time"
)

// ProjectMetadata derives the project fields stored with a chunk: the
// serialized affinity map, the primary project (highest score) in raw and
// normalized form, and comma-joined tag lists of all affiliated aliases.
func ProjectMetadata(affinity map[string]float64) map[string]string {
	meta := make(map[string]string, 6)

	if len(affinity) == 0 {
		return meta
	}

	serialized, err := json.Marshal(affinity)
	if err == nil {
		meta[MetaAffinity] = string(serialized)
	}

	aliases := make([]string, 0, len(affinity))
	for alias := range affinity {
		aliases = append(aliases, alias)
	}
	// Ties on score resolve alphabetically so the derived primary is
	// deterministic.
	sort.Strings(aliases)

	primary := aliases[0]
	for _, alias := range aliases[1:] {
		if affinity[alias] > affinity[primary] {
			primary = alias
		}
	}

	normTags := make([]string, len(aliases))
	for i, alias := range aliases {
		normTags[i] = registry.Normalize(alias)
	}

	meta[MetaPrimary] = primary
	meta[MetaPrimaryNorm] = registry.Normalize(primary)
	meta[MetaPrimaryScore] = strconv.FormatFloat(affinity[primary], 'f', -1, 64)
	meta[MetaProjectTags] = strings.Join(aliases, ",")
	meta[MetaProjectTagsNorm] = strings.Join(normTags, ",")

	return meta
}
