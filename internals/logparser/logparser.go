// Package logparser parses the log4j console output of the game.
package logparser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const timeFormat = "15:04:05"

var (
	// [13:46:33] [main/INFO] [FML]: message
	taggedLine = regexp.MustCompile(`^\[(\d+:\d+:\d+)\] \[(.+?)\/([A-Z]+)\] \[(.+?)\]: (.*)$`)
	// [13:46:33] [Render thread/INFO]: message
	plainLine = regexp.MustCompile(`^\[(\d+:\d+:\d+)\] \[(.+?)\/([A-Z]+)\]: (.*)$`)
	// #@!@# Game crashed! Crash report saved to: #@!@# /path/to/crash-reports/crash-….txt
	crashReport = regexp.MustCompile(`Crash report saved to:\s*(?:#@!@#\s*)?(.+\.txt)`)
)

// LogLine is a parsed log line
type LogLine struct {
	Time    time.Time
	Thread  string
	Level   string
	Tag     string
	Message string
	Garbage bool
}

func (l LogLine) String() string {
	if l.Garbage {
		return l.Message
	}
	if l.Tag == "" {
		return fmt.Sprintf("[%s] [%s/%s]: %s", l.Time.Format(timeFormat), l.Thread, l.Level, l.Message)
	}
	return fmt.Sprintf(
		"[%s] [%s/%s] [%s]: %s",
		l.Time.Format(timeFormat),
		l.Thread,
		l.Level,
		l.Tag,
		l.Message,
	)
}

// IsProblem reports whether the line was logged as WARN, ERROR or FATAL
func (l LogLine) IsProblem() bool {
	switch l.Level {
	case "WARN", "ERROR", "FATAL":
		return true
	}
	return false
}

// ParseLine parses a string into a `LogLine`. Lines that are not in the log4j
// console format are returned with Garbage set
func ParseLine(input string) *LogLine {
	input = strings.TrimRight(input, "\r\n")

	if found := taggedLine.FindStringSubmatch(input); found != nil {
		return build(input, found[1], found[2], found[3], found[4], found[5])
	}
	if found := plainLine.FindStringSubmatch(input); found != nil {
		return build(input, found[1], found[2], found[3], "", found[4])
	}
	return &LogLine{Garbage: true, Message: input}
}

func build(input, ts, thread, level, tag, msg string) *LogLine {
	t, err := time.Parse(timeFormat, ts)
	if err != nil {
		return &LogLine{Garbage: true, Message: input}
	}
	return &LogLine{
		Time:    t,
		Thread:  thread,
		Level:   level,
		Tag:     tag,
		Message: msg,
	}
}

// CrashReport returns the crash report path if the line announces one
func CrashReport(input string) (string, bool) {
	found := crashReport.FindStringSubmatch(input)
	if found == nil {
		return "", false
	}
	return strings.TrimSpace(found[1]), true
}
