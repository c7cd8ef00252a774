package inputs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"golang.org/x/term"
)

// StdinIsTerminal reports whether standard input is an interactive terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Prompt asks the operator on a terminal.
// A single reader goroutine owns the input, so a request abandoned through
// context cancellation does not steal the next answer's line.
type Prompt struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan string
}

// NewPrompt creates a Prompt reading answers from in and writing questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out}
}

func (p *Prompt) start() {
	p.once.Do(func() {
		p.lines = make(chan string)
		go func() {
			defer close(p.lines)
			sc := bufio.NewScanner(p.in)
			for sc.Scan() {
				p.lines <- sc.Text()
			}
		}()
	})
}

func (p *Prompt) ask(ctx context.Context, question string) (string, error) {
	p.start()
	fmt.Fprint(p.out, question)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// RequestInput asks for the path of a replacement input. An empty answer declines.
func (p *Prompt) RequestInput(ctx context.Context, req domain.InputRequest) (string, error) {
	fmt.Fprintf(p.out, "\nPoint %d %s cannot be chained: %s\n", req.Index, req.Field, req.Cause)
	answer, err := p.ask(ctx, "Path to a corrected .fdf (empty to stop): ")
	if err == io.EOF {
		return "", domain.ErrInputDeclined
	}
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", domain.ErrInputDeclined
	}
	return answer, nil
}

// ConfirmResume asks whether to resume from a checkpoint. Only "y" or "yes" confirm.
func (p *Prompt) ConfirmResume(ctx context.Context, cp *domain.Checkpoint) (bool, error) {
	answer, err := p.ask(ctx, fmt.Sprintf("Resume sweep at point %d of %d? [y/N] ", cp.NextIndex()+1, len(cp.Fields)))
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
