package deps

import "testing"

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Missing", Command: "definitely-not-a-real-binary-xyz"},
		{Name: "Unset", Command: ""},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if statuses[0].Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
	if statuses[1].Available || statuses[1].Detail != "command not configured" {
		t.Fatalf("unexpected status for unset command: %#v", statuses[1])
	}
}

func TestCheckBinariesFindsShell(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "Shell", Command: "sh"}})
	if len(statuses) != 1 || !statuses[0].Available {
		t.Fatalf("expected sh to be available, got %#v", statuses)
	}
}
