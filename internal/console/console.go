// Package console is the trusted operator channel: line-oriented allow/deny/
// kick commands read from the server's own terminal.
package console

import (
	"bufio"
	"context"
	"io"
	"log"

	"gatechat/internal/service"
)

// Runner feeds operator command lines to the admission service. The input
// stream is trusted; no credential check is applied.
type Runner struct {
	input     io.Reader
	admission *service.AdmissionService
}

// NewRunner creates a console runner reading from input
func NewRunner(input io.Reader, admission *service.AdmissionService) *Runner {
	return &Runner{input: input, admission: admission}
}

// Run reads command lines until the input is exhausted or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	scanner := bufio.NewScanner(r.input)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Printf("console read error: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			r.admission.HandleConsoleCommand(line)
		}
	}
}
