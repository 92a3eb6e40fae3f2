package brackets

import (
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

// AllocateCourts applies the creation-time court heuristic to a freshly
// built match set:
//
//   - group-stage matches get one fixed court per group, courts handed to
//     groups round-robin over the sorted group labels, and move straight to
//     scheduled;
//   - knockout matches in the final, third-place and semifinal rounds use
//     the first court exclusively; earlier rounds rotate over all courts by
//     their index within the round.
//
// Bye matches are skipped (they are completed before ever playing), and an
// empty court list leaves everything courtless. No load balancing beyond
// the per-round rotation is attempted.
func AllocateCourts(matches []*BracketMatch, courts []*models.Court) {
	if len(courts) == 0 {
		return
	}

	groupCourts := groupCourtAssignment(matches, courts)

	roundIndex := make(map[float64]int)
	for _, bm := range matches {
		switch bm.Stage {
		case models.StageGroup:
			courtID := groupCourts[labelKey(bm.GroupLabel)]
			bm.CourtID = &courtID
			if bm.Status == models.MatchStatusAwaitingCourt {
				bm.Status = models.MatchStatusScheduled
			}
		case models.StageKnockout:
			// Round-1 byes never play; granting them a court would
			// only bounce it back on auto-completion. Later rounds
			// with one filled slot are fed by a predecessor and do
			// want their static court.
			if bm.Round == 1 && bm.IsBye() {
				continue
			}
			var court *models.Court
			if bm.RoundLabel != nil && isShowCourtRound(*bm.RoundLabel) {
				court = courts[0]
			} else {
				idx := roundIndex[bm.Round]
				roundIndex[bm.Round]++
				court = courts[idx%len(courts)]
			}
			id := court.ID
			bm.CourtID = &id
			if bm.Status == models.MatchStatusAwaitingCourt {
				bm.Status = models.MatchStatusScheduled
			}
		}
	}
}

// isShowCourtRound reports whether the round plays exclusively on the first
// court of the list.
func isShowCourtRound(label models.RoundLabel) bool {
	switch label {
	case models.RoundLabelFinal, models.RoundLabelThirdPlace, models.RoundLabelSemifinal:
		return true
	}
	return false
}

func labelKey(label *string) string {
	if label == nil {
		return ""
	}
	return *label
}

func groupCourtAssignment(matches []*BracketMatch, courts []*models.Court) map[string]int {
	seen := make(map[string]bool)
	labels := make([]string, 0)
	for _, bm := range matches {
		if bm.Stage != models.StageGroup {
			continue
		}
		key := labelKey(bm.GroupLabel)
		if !seen[key] {
			seen[key] = true
			labels = append(labels, key)
		}
	}
	sort.Strings(labels)

	assignment := make(map[string]int, len(labels))
	for i, label := range labels {
		assignment[label] = courts[i%len(courts)].ID
	}
	return assignment
}
