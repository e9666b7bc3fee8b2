package pdf

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogOutputNilMeansDiscard(t *testing.T) {
	defer SetLogOutput(os.Stderr)
	SetLogOutput(nil)
	logger := runLogger(true)
	logger.Debug().Msg("dropped")
}

func TestRunLoggerSilentWithoutDebug(t *testing.T) {
	var buf bytes.Buffer
	defer SetLogOutput(os.Stderr)
	SetLogOutput(&buf)
	logger := runLogger(false)
	logger.Debug().Msg("nothing")
	assert.Empty(t, buf.String())
}

// Runs can start while another goroutine reconfigures the sink; the
// CLI extracts multiple files concurrently.
func TestLogSinkSafeUnderConcurrentRuns(t *testing.T) {
	defer SetLogOutput(os.Stderr)
	SetLogOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogOutput(io.Discard)
		}()
		go func() {
			defer wg.Done()
			logger := runLogger(true)
			logger.Debug().Msg("concurrent run")
		}()
	}
	wg.Wait()
}
