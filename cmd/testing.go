package cmd

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// mu serialises all calls of TestExecute.
// The command is passed as a pointer and os.Stdout & os.Stderr are replaced for the duration of the call,
// so concurrent tests would race otherwise.
var mu sync.Mutex

// TestExecute executes command with args and returns everything written to
// the command's output streams and to os.Stdout & os.Stderr.
func TestExecute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	buf := &syncBuffer{}
	command.SetOut(buf)
	command.SetErr(buf)
	command.SetArgs(args)

	var cmdErr error

	captureOS(t, buf, func() {
		_, cmdErr = command.ExecuteC()
	})

	return buf.String(), cmdErr
}

// captureOS redirects os.Stdout & os.Stderr into w while fn runs.
func captureOS(t *testing.T, w io.Writer, fn func()) {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = wOut, wErr

	// read while fn runs, so a full pipe buffer never blocks fn
	var wg sync.WaitGroup

	outs := [2]bytes.Buffer{}
	for i, r := range []*os.File{rOut, rErr} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, _ = io.Copy(&outs[i], r)
		}()
	}

	fn()

	os.Stdout, os.Stderr = stdout, stderr

	require.NoError(t, wOut.Close())
	require.NoError(t, wErr.Close())
	wg.Wait()

	for i := range outs {
		_, err = w.Write(outs[i].Bytes())
		require.NoError(t, err)
	}
}

// syncBuffer is an io.Writer safe for concurrent use.
type syncBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.Write(p) //nolint:wrapcheck // bytes.Buffer never fails
}

func (b *syncBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.String()
}
