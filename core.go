package vkframe

import (
	"io"
	"log"
	"os"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

// Package loggers. Vulkan messages are written through these so a single
// SetLogOutput call redirects everything.
var (
	InfoLog  = log.New(os.Stderr, "INFO: ", logFlags)
	WarnLog  = log.New(os.Stderr, "WARNING: ", logFlags)
	ErrorLog = log.New(os.Stderr, "ERROR: ", logFlags)
)

func SetLogOutput(w io.Writer) {
	InfoLog.SetOutput(w)
	WarnLog.SetOutput(w)
	ErrorLog.SetOutput(w)
}

// OpenLogFile appends all package logs to path in addition to stderr.
// The returned closer should be called on shutdown.
func OpenLogFile(path string) (io.Closer, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	SetLogOutput(io.MultiWriter(os.Stderr, file))
	return file, nil
}
