// Angel Guided Interview Engine
// Progress calculation from phase + answered count

package interview

import "math"

// Progress is the derived progress descriptor returned with every turn.
type Progress struct {
	Phase     Phase  `json:"phase"`
	PhaseName string `json:"phase_name"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// CalculateProgress maps the session position to a normalized progress
// descriptor. current may be nil when the session has no tag yet.
//
// When the tag's phase disagrees with the session phase outside a
// transition window, the tag wins: phase is re-derived from asked_q rather
// than failing the turn.
func CalculateProgress(phase Phase, answeredCount int, current *Tag) Progress {
	if current != nil && current.Phase != phase && !IsTransition(phase) {
		phase = current.Phase
	}

	total := TotalQuestions(phase)
	if total <= 0 {
		total = 1
	}

	answered := answeredCount
	if answered > total {
		answered = total
	}
	if answered < 0 {
		answered = 0
	}

	percent := int(math.Round(float64(answered) / float64(total) * 100))
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return Progress{
		Phase:     phase,
		PhaseName: DisplayName(phase),
		Answered:  answered,
		Total:     total,
		Percent:   percent,
	}
}
