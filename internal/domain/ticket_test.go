package domain

import "testing"

func TestBoardStage_MergesMonetizationForNonAdmins(t *testing.T) {
	for _, role := range []Role{RoleManager, RoleContributor} {
		if got := BoardStage(role, StageInvoiced); got != StageDone {
			t.Errorf("BoardStage(%s, invoiced) = %s, want done", role, got)
		}
		if got := BoardStage(role, StagePaid); got != StageDone {
			t.Errorf("BoardStage(%s, paid) = %s, want done", role, got)
		}
		if got := BoardStage(role, StageInProgress); got != StageInProgress {
			t.Errorf("BoardStage(%s, in_progress) = %s, want in_progress", role, got)
		}
	}

	if got := BoardStage(RoleAdmin, StageInvoiced); got != StageInvoiced {
		t.Errorf("BoardStage(admin, invoiced) = %s, want invoiced", got)
	}
}

func TestValidateAssignment(t *testing.T) {
	alice := "alice"
	bob := "bob"

	if err := ValidateAssignment(&alice, &bob); err != nil {
		t.Errorf("distinct members should pass, got %v", err)
	}
	if err := ValidateAssignment(&alice, &alice); err == nil {
		t.Error("same member as assignee and reviewer should fail")
	}
	if err := ValidateAssignment(nil, &alice); err != nil {
		t.Errorf("nil assignee should pass, got %v", err)
	}
	if err := ValidateAssignment(&alice, nil); err != nil {
		t.Errorf("nil reviewer should pass, got %v", err)
	}
}

func TestStage_IsValid(t *testing.T) {
	for _, stage := range Stages {
		if !stage.IsValid() {
			t.Errorf("%s should be valid", stage)
		}
	}
	if Stage("archived").IsValid() {
		t.Error("archived should not be a valid stage")
	}
}
