package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/example/drtempus/internal/ui"
)

// Terminal commands
const (
	cmdSkip = ":pular"
	cmdQuit = ":sair"
)

// Run feeds lines read from in to the controller until the quiz is closed, the input ends
// or ctx is cancelled
func Run(ctx context.Context, ctrl *ui.Controller, in io.Reader) error {
	if err := ctrl.Open(); err != nil {
		return err
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			quit(ctrl)
			return ctx.Err()
		case err := <-readErr:
			quit(ctrl)
			return err
		case line := <-lines:
			if err := handleLine(ctx, ctrl, line); err != nil && !errors.Is(err, ui.ErrInvalidTransition) {
				log.Printf("Error handling input: %v", err)
			}
			if ctrl.State() == ui.StateClosed {
				return nil
			}
		}
	}
}

// handleLine maps one line of input to the action offered by the current screen
func handleLine(ctx context.Context, ctrl *ui.Controller, line string) error {
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, cmdQuit) {
		return ctrl.Quit()
	}

	switch ctrl.State() {
	case ui.StateStart:
		return ctrl.Begin()
	case ui.StateQuiz:
		if strings.EqualFold(line, cmdSkip) {
			return ctrl.Skip()
		}
		return ctrl.Submit(ctx, line)
	case ui.StateFinished:
		switch strings.ToLower(line) {
		case "r", "recomeçar", "recomecar":
			return ctrl.Restart()
		case "s", "sair", "q":
			return ctrl.Quit()
		}
		return ui.ErrInvalidTransition
	default:
		return ui.ErrInvalidTransition
	}
}

// quit closes the quiz unless it is already closed
func quit(ctrl *ui.Controller) {
	if ctrl.State() != ui.StateClosed {
		ctrl.Quit()
	}
}
