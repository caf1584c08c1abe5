package version

import "testing"

func TestString(t *testing.T) {
	oldCommit, oldTime := GitCommit, BuildTime
	t.Cleanup(func() { GitCommit, BuildTime = oldCommit, oldTime })

	GitCommit = "0123456789abcdef0123"
	BuildTime = "2026-01-02T03:04:05Z"
	want := "Shape Annotator v" + Version + " (commit 0123456789ab, built 2026-01-02T03:04:05Z)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
