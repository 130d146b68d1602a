package pickup

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pickup-ledger/server/internal/model"
)

func TestSummarize(t *testing.T) {
	sessions := Parse("1 2 7 코코나\n0 1 9\n2 1 7 코코나 마키", testStudents)
	got := Summarize(sessions)
	want := model.Summary{
		Trials:     30,
		Tier1Count: 23,
		Tier2Count: 4,
		Tier3Count: 3,
		Tier3Rate:  0.1,
		StudentIDs: []string{"10050", "10012"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Trials != 0 || got.Tier3Rate != 0 || len(got.StudentIDs) != 0 {
		t.Fatalf("unexpected empty summary: %+v", got)
	}
}
