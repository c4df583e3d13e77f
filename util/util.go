package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Debug uint64 = 0

var logger = mkLogger()

func mkLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.DebugLevel)
	return l
}

// SetDebug sets the highest DPrintf level that is printed.
func SetDebug(level uint64) {
	Debug = level
}

// Logger returns the logger DPrintf writes to.
func Logger() *logrus.Logger {
	return logger
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		if level == 0 {
			logger.Infof(format, a...)
		} else {
			logger.Debugf(format, a...)
		}
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}
