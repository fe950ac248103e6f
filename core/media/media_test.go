package media

import "testing"

func TestPercentFromPosition(t *testing.T) {
	cases := []struct {
		position int
		percent  int
	}{
		{0, 0},
		{1, 0},
		{13, 10},
		{64, 50},
		{126, 99},
		{127, 100},
		{-5, 0},
		{300, 100},
	}
	for _, c := range cases {
		if got := PercentFromPosition(c.position); got != c.percent {
			t.Errorf("PercentFromPosition(%d) = %d, want %d", c.position, got, c.percent)
		}
	}
}

func TestClampPosition(t *testing.T) {
	if got := ClampPosition(-1); got != 0 {
		t.Errorf("ClampPosition(-1) = %d", got)
	}
	if got := ClampPosition(128); got != MaxPosition {
		t.Errorf("ClampPosition(128) = %d", got)
	}
	if got := ClampPosition(64); got != 64 {
		t.Errorf("ClampPosition(64) = %d", got)
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		Accepted:     "accepted",
		Rejected:     "rejected",
		OtherFailure: "failure",
	}
	for out, want := range cases {
		if got := out.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", out, got, want)
		}
	}
}
