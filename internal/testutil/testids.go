package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var runCounter int64

// NewTestRunID returns a process-unique run id traceable to the calling
// test. Pass t.Name().
func NewTestRunID(prefix, tname string) string {
	id := atomic.AddInt64(&runCounter, 1)
	return fmt.Sprintf("%s-%s-%d", prefix, strings.ReplaceAll(tname, "/", "-_-"), id)
}
