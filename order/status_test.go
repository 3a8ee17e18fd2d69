package order

import "testing"

func TestStatusOpenFlow(t *testing.T) {
	open := []Status{StatusOpen, StatusAccepting, StatusHold,
		StatusInitialized, StatusCreated, StatusCommited}
	for _, s := range open {
		if !s.InOpenFlow() {
			t.Fatalf("%q should be in open flow", s)
		}
	}
	// new 尚未广播，不计入 opened
	closed := []Status{StatusClear, StatusCreating, StatusNew, StatusFinished, StatusExpired,
		StatusOffline, StatusCanceled, StatusInvalid, StatusRolledBack, StatusRollbackFailed}
	for _, s := range closed {
		if s.InOpenFlow() {
			t.Fatalf("%q should not be in open flow", s)
		}
	}
}

func TestStatusReopenEligible(t *testing.T) {
	eligible := []Status{StatusClear, StatusExpired, StatusOffline, StatusCanceled,
		StatusInvalid, StatusRolledBack, StatusRollbackFailed}
	for _, s := range eligible {
		if !s.ReopenEligible(false) {
			t.Fatalf("%q should be reopen eligible", s)
		}
	}
	if StatusFinished.ReopenEligible(false) {
		t.Fatal("finished must not reopen when the feature is off")
	}
	if !StatusFinished.ReopenEligible(true) {
		t.Fatal("finished must reopen when the feature is on")
	}
	for _, s := range []Status{StatusNew, StatusOpen, StatusCreating, StatusCommited} {
		if s.ReopenEligible(true) {
			t.Fatalf("%q must never reopen", s)
		}
	}
}

func TestStatusTakeable(t *testing.T) {
	if !StatusNew.Takeable() || !StatusOpen.Takeable() {
		t.Fatal("new and open are takeable")
	}
	for _, s := range []Status{StatusAccepting, StatusHold, StatusFinished, StatusClear} {
		if s.Takeable() {
			t.Fatalf("%q should not be takeable", s)
		}
	}
}

func TestRemoteOrderPrice(t *testing.T) {
	r := RemoteOrder{MakerSize: 2, TakerSize: 5}
	if got := r.Price(); got != 2.5 {
		t.Fatalf("price = %v, want 2.5", got)
	}
	if got := (RemoteOrder{MakerSize: 0, TakerSize: 5}).Price(); got != 0 {
		t.Fatalf("price with zero maker size = %v, want 0", got)
	}
}
