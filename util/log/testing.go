package log

import (
	"os"
	"testing"
)

var _testingLogger Logger

// TestingLogger returns a Logger which writes to STDOUT if the tests
// run with the verbose (-v) flag, and discards everything otherwise.
//
// NOTE: use it only in tests.
func TestingLogger() Logger {
	if _testingLogger != nil {
		return _testingLogger
	}

	if testing.Verbose() {
		SetLevel(LEVEL_DEBUG)
		_testingLogger = New(os.Stdout)
	} else {
		_testingLogger = NewNopLogger()
	}
	return _testingLogger
}
