// Angel Guided Interview Engine
// Sequence validation: monotonic, gap-free question progression

package interview

// AnomalyKind classifies a detected sequence anomaly. Anomalies are never
// surfaced to the user; they are corrected silently and logged internally.
type AnomalyKind string

const (
	AnomalyNone         AnomalyKind = ""
	AnomalyForwardSkip  AnomalyKind = "forward_skip"
	AnomalyBackwardJump AnomalyKind = "backward_jump"
	AnomalyCrossPhase   AnomalyKind = "cross_phase"
)

// ValidateAndCorrect reconciles a tag extracted from generated text against
// the last persisted position. last is nil when the session has no prior
// tag. The returned tag is what the session should record; the anomaly kind
// is non-empty when a correction was applied.
//
// Rules, in order:
//   - cross-phase tags are accepted only as the first question of the new
//     phase, otherwise forced to .01
//   - same-phase +1 is normal progression
//   - a jump past last+1 is forced back to last+1 (never skip)
//   - a number below last is forced to last+1 (never regress organically;
//     explicit navigation sets asked_q directly and bypasses this path)
//   - the same number is valid: the session pre-increments asked_q before
//     regeneration, so re-deriving the current number is expected
func ValidateAndCorrect(candidate Tag, last *Tag) (Tag, AnomalyKind) {
	lastNum := 0
	if last != nil && last.Phase == candidate.Phase {
		lastNum = last.Number
	}

	if last != nil && candidate.Phase != last.Phase {
		if candidate.Number == 1 {
			return candidate, AnomalyNone
		}
		return Tag{Phase: candidate.Phase, Number: 1}, AnomalyCrossPhase
	}

	switch {
	case candidate.Number == lastNum+1:
		return candidate, AnomalyNone
	case candidate.Number > lastNum+1:
		return Tag{Phase: candidate.Phase, Number: lastNum + 1}, AnomalyForwardSkip
	case candidate.Number < lastNum:
		return Tag{Phase: candidate.Phase, Number: lastNum + 1}, AnomalyBackwardJump
	default: // candidate.Number == lastNum
		return candidate, AnomalyNone
	}
}

// RewriteTag replaces every question tag literal in text with the corrected
// tag so the displayed question matches the persisted position.
func RewriteTag(text string, corrected Tag) string {
	return tagPattern.ReplaceAllString(text, corrected.Marker())
}
