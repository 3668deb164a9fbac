package testutil

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// Execute runs c with args and returns what was written to os.Stdout,
// including log lines from handlers created during the run.
func Execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var err error
	out := CaptureStdout(t, func() {
		c.SetArgs(args)
		err = c.Execute()
	})
	return out, err
}

// CaptureStdout redirects os.Stdout while fn runs.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	defer func() { os.Stdout = old }()
	fn()
	w.Close()

	return strings.TrimSpace(<-outC)
}
