package version

import "testing"

func TestString(t *testing.T) {
	oldV, oldSHA := Version, GitSHA
	defer func() { Version, GitSHA = oldV, oldSHA }()

	Version, GitSHA = "v1.2.0", "0123456789abcdef"
	if got := String(); got != "v1.2.0 (0123456)" {
		t.Errorf("String() = %q", got)
	}

	GitSHA = "abc"
	if got := String(); got != "v1.2.0 (abc)" {
		t.Errorf("String() = %q", got)
	}
}
