package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// LabelForRound tags a knockout round by its distance from the final.
func LabelForRound(round, numRounds int) models.RoundLabel {
	switch numRounds - round {
	case 0:
		return models.RoundLabelFinal
	case 1:
		return models.RoundLabelSemifinal
	case 2:
		return models.RoundLabelQuarterfinal
	case 3:
		return models.RoundLabelRoundOf16
	case 4:
		return models.RoundLabelRoundOf32
	case 5:
		return models.RoundLabelRoundOf64
	default:
		return models.RoundLabelRoundOf128
	}
}

// GroupLabel names groups A, B, C, ... then AA, AB past 26 groups.
func GroupLabel(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return string(rune('A'+index/26-1)) + string(rune('A'+index%26))
}

func knockoutMatchUID(round float64, order int) string {
	if round == float64(int(round)) {
		return fmt.Sprintf("R%dM%d", int(round), order)
	}
	return fmt.Sprintf("R%.1fM%d", round, order)
}
