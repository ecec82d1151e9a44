package supervisor

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const progressPollInterval = 5 * time.Millisecond

// pollProgress opens path for shared reading and polls for new bytes
// every progressPollInterval, emitting a callback sample for each
// "out_time_us=<n>" line. It stops when done is closed; if
// ensureAllRead is set, it performs one final read after done closes
// so the last sample written just before exit isn't missed.
func pollProgress(path string, cb ProgressCallback, done <-chan struct{}, ensureAllRead bool) {
	f, err := os.Open(path)
	if err != nil {
		// The toolchain may not have created the file yet; retry briefly.
		for i := 0; i < 20; i++ {
			time.Sleep(progressPollInterval)
			f, err = os.Open(path)
			if err == nil {
				break
			}
		}
		if err != nil {
			return
		}
	}
	defer f.Close()

	var offset int64
	var pending strings.Builder

	read := func() {
		buf := make([]byte, 64*1024)
		for {
			n, rerr := f.ReadAt(buf, offset)
			if n > 0 {
				pending.Write(buf[:n])
				offset += int64(n)
				drainLinesFromBuilder(&pending, cb)
			}
			if rerr != nil || n == 0 {
				return
			}
		}
	}

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			if ensureAllRead {
				read()
			}
			return
		case <-ticker.C:
			read()
		}
	}
}

// drainLinesFromBuilder extracts complete lines from buf, dispatching
// any out_time_us= samples to cb, and leaves the trailing partial line
// (if any) in buf for the next read.
func drainLinesFromBuilder(buf *strings.Builder, cb ProgressCallback) {
	content := buf.String()
	idx := strings.LastIndexByte(content, '\n')
	if idx < 0 {
		return
	}
	complete := content[:idx]
	rest := content[idx+1:]
	buf.Reset()
	buf.WriteString(rest)

	for _, line := range strings.Split(complete, "\n") {
		line = strings.TrimSuffix(line, "\r")
		const prefix = "out_time_us="
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		us, err := strconv.ParseInt(line[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		seconds := float64(us) / 1_000_000.0
		if cb != nil {
			cb(seconds)
		}
	}
}
