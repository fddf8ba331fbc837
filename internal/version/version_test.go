// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package version

import (
	"strings"
	"testing"
)

func TestGetVersionString(t *testing.T) {
	origVersion, origCommit := Version, CommitHash
	defer func() {
		Version, CommitHash = origVersion, origCommit
	}()

	Version, CommitHash = "v1.2.3", "abc123"
	if got := GetVersionString(); got != "v1.2.3 (commit abc123)" {
		t.Fatalf("unexpected version string: %s", got)
	}
	Version = ""
	if got := GetVersionString(); got != "devel (commit abc123)" {
		t.Fatalf("unexpected version string: %s", got)
	}
	CommitHash = ""
	if got := GetVersionString(); !strings.HasPrefix(got, "devel (commit ") {
		t.Fatalf("unexpected version string: %s", got)
	}
}
