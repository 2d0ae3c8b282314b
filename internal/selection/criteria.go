package selection

import (
	"fmt"

	"github.com/hbomb79/Cull/internal/xmp"
)

type Comparison int

const (
	MoreEqual Comparison = iota
	LessEqual
	Equal
)

func (e Comparison) Values() []string {
	return []string{"MORE_EQUAL", "LESS_EQUAL", "EQUAL"}
}

func (e Comparison) String() string {
	return e.Values()[e]
}

// ParseComparison maps the user-facing comparison spellings to their
// Comparison value. Unrecognised input returns an error listing the
// accepted spellings.
func ParseComparison(raw string) (Comparison, error) {
	switch raw {
	case "more-equal", "MORE_EQUAL":
		return MoreEqual, nil
	case "less-equal", "LESS_EQUAL":
		return LessEqual, nil
	case "equal", "EQUAL":
		return Equal, nil
	}

	return MoreEqual, fmt.Errorf("comparison '%s' is not recognised (accepted: more-equal, less-equal, equal)", raw)
}

// Criteria describes which media the selection service should accept. A
// criteria might be "rating MORE_EQUAL 3 with label 'Keep'". The rating
// check and the label check (if a label is set) must BOTH pass for an
// item to be accepted; Inverse flips that combined verdict.
type Criteria struct {
	Threshold  int        `json:"threshold"`
	Comparison Comparison `json:"comparison"`
	Label      string     `json:"label"`
	Inverse    bool       `json:"inverse"`
}

// ValidateLegal ensures the criteria is LEGAL:
// - Is the threshold inside the rating scale (0 to 5 is usual, but
// anything non-negative is tolerated as some editors write larger values)
// - Is the comparison one of the known comparison types
func (criteria *Criteria) ValidateLegal() error {
	if criteria.Threshold < 0 {
		return fmt.Errorf("criteria threshold %d is not legal; ratings are never negative", criteria.Threshold)
	}

	if int(criteria.Comparison) < 0 || int(criteria.Comparison) >= len(criteria.Comparison.Values()) {
		return fmt.Errorf("criteria comparison %d is not a recognised comparison type", int(criteria.Comparison))
	}

	return nil
}

// Accepts checks the fields recovered from a media file against this
// criteria. The rating is compared to the threshold using the criteria's
// comparison type, and the label (when the criteria specifies one) must
// equal the file's label exactly; a file with no label never satisfies a
// label requirement.
func (criteria *Criteria) Accepts(fields xmp.PacketFields) bool {
	verdict := criteria.thresholdSatisfied(fields.Rating) && criteria.labelSatisfied(fields.Label)
	if criteria.Inverse {
		return !verdict
	}

	return verdict
}

func (criteria *Criteria) thresholdSatisfied(rating int) bool {
	switch criteria.Comparison {
	case MoreEqual:
		return rating >= criteria.Threshold
	case LessEqual:
		return rating <= criteria.Threshold
	case Equal:
		return rating == criteria.Threshold
	default:
		return false
	}
}

func (criteria *Criteria) labelSatisfied(label string) bool {
	if criteria.Label == "" {
		return true
	}

	return label == criteria.Label
}

func (criteria *Criteria) String() string {
	return fmt.Sprintf("Criteria{rating %s %d label=%q inverse=%v}", criteria.Comparison, criteria.Threshold, criteria.Label, criteria.Inverse)
}
