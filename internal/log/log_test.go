package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestFormat(t *testing.T) {
	var buf bytes.Buffer
	l := GetLogger("fmt-test")
	l.Out = &buf

	l.Infof("hello %d", 7)

	line := buf.String()
	if !strings.Contains(line, "fmt-test <INFO>: hello 7") {
		t.Errorf("line = %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("line not newline-terminated")
	}
}

func TestGetLoggerReturnsSameInstance(t *testing.T) {
	if GetLogger("same") != GetLogger("same") {
		t.Error("GetLogger created a second logger for the same name")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := GetLogger("level-test")
	l.Out = &buf

	SetLevel(logrus.WarnLevel)
	defer SetLevel(logrus.InfoLevel)

	l.Infof("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	l.Warnf("visible")
	if !strings.Contains(buf.String(), "<WARNING>: visible") {
		t.Errorf("warn line = %q", buf.String())
	}

	// Future loggers pick the level up too.
	if GetLogger("level-test-late").Level != logrus.WarnLevel {
		t.Error("new logger did not inherit the default level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warning", logrus.WarnLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"nonsense", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
