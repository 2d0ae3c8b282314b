package selection_test

import (
	"testing"

	"github.com/hbomb79/Cull/internal/selection"
	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/stretchr/testify/assert"
)

type acceptanceTest struct {
	summary  string
	criteria selection.Criteria
	fields   xmp.PacketFields
	accepted bool
}

func runAcceptanceTests(t *testing.T, tests []acceptanceTest) {
	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			verdict := tt.criteria.Accepts(tt.fields)
			assert.Equal(t, tt.accepted, verdict, "Accepts() verdict did not match expected for %s against %+v", &tt.criteria, tt.fields)
		})
	}
}

func Test_Criteria_ThresholdComparisons(t *testing.T) {
	runAcceptanceTests(t, []acceptanceTest{
		{
			summary:  "MoreEqual accepts rating above threshold",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual},
			fields:   xmp.PacketFields{Rating: 5},
			accepted: true,
		},
		{
			summary:  "MoreEqual accepts rating equal to threshold",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual},
			fields:   xmp.PacketFields{Rating: 3},
			accepted: true,
		},
		{
			summary:  "MoreEqual rejects rating below threshold",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual},
			fields:   xmp.PacketFields{Rating: 2},
			accepted: false,
		},
		{
			summary:  "LessEqual accepts rating below threshold",
			criteria: selection.Criteria{Threshold: 2, Comparison: selection.LessEqual},
			fields:   xmp.PacketFields{Rating: 1},
			accepted: true,
		},
		{
			summary:  "LessEqual rejects rating above threshold",
			criteria: selection.Criteria{Threshold: 2, Comparison: selection.LessEqual},
			fields:   xmp.PacketFields{Rating: 4},
			accepted: false,
		},
		{
			summary:  "Equal accepts only exact rating",
			criteria: selection.Criteria{Threshold: 4, Comparison: selection.Equal},
			fields:   xmp.PacketFields{Rating: 4},
			accepted: true,
		},
		{
			summary:  "Equal rejects neighbouring rating",
			criteria: selection.Criteria{Threshold: 4, Comparison: selection.Equal},
			fields:   xmp.PacketFields{Rating: 5},
			accepted: false,
		},
		{
			summary:  "Unrated file rejected by positive threshold",
			criteria: selection.Criteria{Threshold: 1, Comparison: selection.MoreEqual},
			fields:   xmp.PacketFields{},
			accepted: false,
		},
		{
			summary:  "Unrated file accepted by zero threshold",
			criteria: selection.Criteria{Threshold: 0, Comparison: selection.MoreEqual},
			fields:   xmp.PacketFields{},
			accepted: true,
		},
	})
}

func Test_Criteria_LabelMatching(t *testing.T) {
	runAcceptanceTests(t, []acceptanceTest{
		{
			summary:  "Matching label and rating accepted",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual, Label: "Keep"},
			fields:   xmp.PacketFields{Rating: 4, Label: "Keep"},
			accepted: true,
		},
		{
			summary:  "Label mismatch rejects despite rating",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual, Label: "Keep"},
			fields:   xmp.PacketFields{Rating: 4, Label: "Reject"},
			accepted: false,
		},
		{
			summary:  "Label comparison is exact, not substring",
			criteria: selection.Criteria{Threshold: 0, Comparison: selection.MoreEqual, Label: "Keep"},
			fields:   xmp.PacketFields{Rating: 5, Label: "Keeper"},
			accepted: false,
		},
		{
			summary:  "Unlabelled file never satisfies a label requirement",
			criteria: selection.Criteria{Threshold: 0, Comparison: selection.MoreEqual, Label: "Keep"},
			fields:   xmp.PacketFields{Rating: 5},
			accepted: false,
		},
		{
			summary:  "No label requirement ignores the file label",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual},
			fields:   xmp.PacketFields{Rating: 3, Label: "Anything"},
			accepted: true,
		},
	})
}

func Test_Criteria_InverseFlipsCombinedVerdict(t *testing.T) {
	runAcceptanceTests(t, []acceptanceTest{
		{
			summary:  "Inverse rejects an otherwise accepted item",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual, Inverse: true},
			fields:   xmp.PacketFields{Rating: 5},
			accepted: false,
		},
		{
			summary:  "Inverse accepts an otherwise rejected item",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual, Inverse: true},
			fields:   xmp.PacketFields{Rating: 1},
			accepted: true,
		},
		{
			summary:  "Inverse applies to the combined rating and label verdict",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual, Label: "Keep", Inverse: true},
			fields:   xmp.PacketFields{Rating: 5, Label: "Reject"},
			accepted: true,
		},
		{
			summary:  "Inverse rejects when both rating and label match",
			criteria: selection.Criteria{Threshold: 3, Comparison: selection.MoreEqual, Label: "Keep", Inverse: true},
			fields:   xmp.PacketFields{Rating: 5, Label: "Keep"},
			accepted: false,
		},
	})
}

func Test_Criteria_ValidateLegal(t *testing.T) {
	tests := []struct {
		summary   string
		criteria  selection.Criteria
		shouldErr bool
	}{
		{summary: "Default criteria is legal", criteria: selection.Criteria{}, shouldErr: false},
		{summary: "Typical criteria is legal", criteria: selection.Criteria{Threshold: 5, Comparison: selection.LessEqual, Label: "Keep"}, shouldErr: false},
		{summary: "Negative threshold is illegal", criteria: selection.Criteria{Threshold: -1}, shouldErr: true},
		{summary: "Unknown comparison is illegal", criteria: selection.Criteria{Comparison: selection.Comparison(99)}, shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			err := tt.criteria.ValidateLegal()
			if tt.shouldErr {
				assert.Error(t, err, "ValidateLegal() expected to return an error")
			} else {
				assert.NoError(t, err, "ValidateLegal() returned an error when it was not expected")
			}
		})
	}
}

func Test_ParseComparison(t *testing.T) {
	tests := []struct {
		summary   string
		input     string
		expected  selection.Comparison
		shouldErr bool
	}{
		{summary: "Flag spelling more-equal", input: "more-equal", expected: selection.MoreEqual},
		{summary: "Flag spelling less-equal", input: "less-equal", expected: selection.LessEqual},
		{summary: "Flag spelling equal", input: "equal", expected: selection.Equal},
		{summary: "Enum spelling MORE_EQUAL", input: "MORE_EQUAL", expected: selection.MoreEqual},
		{summary: "Unknown spelling rejected", input: "greater", shouldErr: true},
		{summary: "Empty input rejected", input: "", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			comparison, err := selection.ParseComparison(tt.input)
			if tt.shouldErr {
				assert.Error(t, err, "ParseComparison(%q) expected to return an error", tt.input)
				return
			}

			assert.NoError(t, err, "ParseComparison(%q) returned an unexpected error", tt.input)
			assert.Equal(t, tt.expected, comparison)
		})
	}
}
