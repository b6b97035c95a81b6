package transcript

import (
	"fmt"
	"sort"
	"strings"
)

// Split converts a segmentation plan into concrete, non-overlapping
// character ranges within the transcript.
//
// Anchors are resolved as first case-insensitive literal substring
// matches; when an anchor recurs in the transcript the first occurrence
// wins. A missing start anchor defaults to 0, a missing end anchor to the
// end of the transcript. Boundaries are clamped to keep episodes ordered
// and snapped forward to sentence starts so no episode begins or ends
// mid-sentence. Segments whose resulting slice is empty are skipped.
//
// A plan that yields zero usable episodes degrades to a single episode
// spanning the whole transcript with no summary or topics, so ingestion
// never fails on a bad plan.
func Split(transcriptText, meetingID string, plan []PlanSegment) []Episode {
	ordered := make([]PlanSegment, len(plan))
	copy(ordered, plan)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	lower := strings.ToLower(transcriptText)

	var episodes []Episode
	prevEnd := 0

	for _, seg := range ordered {
		start := 0
		if seg.StartAnchor != "" {
			if idx := strings.Index(lower, strings.ToLower(seg.StartAnchor)); idx >= 0 {
				start = idx
			}
		}

		end := len(transcriptText)
		if seg.EndAnchor != "" {
			anchor := strings.ToLower(seg.EndAnchor)
			if idx := strings.Index(lower, anchor); idx >= 0 {
				end = idx + len(anchor)
			}
		}

		if start < prevEnd {
			start = prevEnd
		}
		if end < start {
			end = len(transcriptText)
		}

		start = snapForward(transcriptText, start)
		end = snapForward(transcriptText, end)
		if end < start {
			end = len(transcriptText)
		}

		text := transcriptText[start:end]
		if strings.TrimSpace(text) == "" {
			continue
		}

		episodes = append(episodes, Episode{
			EpisodeID:       episodeID(meetingID, len(episodes)),
			MeetingID:       meetingID,
			StartChar:       start,
			EndChar:         end,
			Text:            text,
			Summary:         seg.Summary,
			Topics:          seg.Topics,
			ProjectAffinity: affinityMap(seg.Projects),
		})
		prevEnd = end
	}

	if len(episodes) == 0 {
		episodes = append(episodes, Episode{
			EpisodeID: episodeID(meetingID, 0),
			MeetingID: meetingID,
			StartChar: 0,
			EndChar:   len(transcriptText),
			Text:      transcriptText,
		})
	}

	return episodes
}

func episodeID(meetingID string, index int) string {
	return fmt.Sprintf("%s:%d", meetingID, index)
}

func affinityMap(projects []ProjectRef) map[string]float64 {
	if len(projects) == 0 {
		return nil
	}
	affinity := make(map[string]float64, len(projects))
	for _, p := range projects {
		if p.Alias == "" {
			continue
		}
		affinity[p.Alias] = p.Confidence
	}
	if len(affinity) == 0 {
		return nil
	}
	return affinity
}
