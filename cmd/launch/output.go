package launch

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/logparser"
)

// output prints the game output and highlights problems
type output struct {
	mu     sync.Mutex
	report string
}

func (o *output) stream(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fmt.Fprintln(w, o.render(scanner.Text()))
	}
	return scanner.Err()
}

func (o *output) render(raw string) string {
	if path, ok := logparser.CrashReport(raw); ok {
		o.mu.Lock()
		o.report = path
		o.mu.Unlock()
		return gchalk.Red(raw)
	}

	line := logparser.ParseLine(raw)
	switch line.Level {
	case "ERROR", "FATAL":
		return gchalk.Red(raw)
	case "WARN":
		return gchalk.Yellow(raw)
	}
	return raw
}

func (o *output) crashReport() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.report
}
