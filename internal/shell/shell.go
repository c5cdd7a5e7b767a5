// Package shell is an interactive terminal front-end. It renders what the
// controller pushes to it and turns typed lines into user intents.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"denario/internal/core"
	applog "denario/internal/log"
	"denario/internal/services"

	"github.com/dustin/go-humanize/english"
	"github.com/shopspring/decimal"
)

const helpText = `Commands:
  add <amount> [description]   record an expense (alias: spend)
  balance                      show the current balance
  history                      list expenses, newest first (alias: list)
  reset                        delete every expense and the balance
  help                         show this help
  quit                         leave (alias: exit)`

// Actions are the user intents the shell can trigger.
type Actions interface {
	Resume(ctx context.Context) error
	RecordExpense(ctx context.Context, amountInput, description string) (services.Result, error)
	ResetEverything(ctx context.Context) error
	Balance() decimal.Decimal
}

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Shell implements ports.Display on a line-oriented terminal.
type Shell struct {
	out    io.Writer
	lines  chan string
	done   chan struct{}
	once   sync.Once
	logger *applog.Logger

	// set by the reader before lines is closed
	readErr error

	mu      sync.Mutex
	listing []core.Expense
}

func New(in io.Reader, out io.Writer, logger *applog.Logger) *Shell {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Shell{
		out:    out,
		lines:  make(chan string),
		done:   make(chan struct{}),
		logger: logger.WithComponent(applog.ComponentShell),
	}
	go s.pump(in)
	return s
}

func (s *Shell) pump(in io.Reader) {
	defer close(s.lines)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		select {
		case s.lines <- sc.Text():
		case <-s.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.logger.Error("Input stopped", applog.FieldError, err)
		s.readErr = fmt.Errorf("read input: %w", err)
	}
}

// ShowBalance implements ports.Display
func (s *Shell) ShowBalance(balance decimal.Decimal) {
	fmt.Fprintf(s.out, "Balance: %s\n", core.FormatUSD(balance))
}

// ShowExpenses implements ports.Display. The listing is kept for the
// history command; only a one-line summary is printed.
func (s *Shell) ShowExpenses(expenses []core.Expense) {
	s.mu.Lock()
	s.listing = expenses
	s.mu.Unlock()

	if len(expenses) == 0 {
		fmt.Fprintln(s.out, "No expenses recorded.")
		return
	}
	summary := core.Summarize(expenses)
	fmt.Fprintf(s.out, "%s in history, %s spent\n",
		english.Plural(summary.Count, "expense", ""), core.FormatUSD(summary.Total))
}

// PromptInitialBalance implements ports.Display. End of input counts as
// cancelling the prompt.
func (s *Shell) PromptInitialBalance(ctx context.Context) (string, bool, error) {
	fmt.Fprintln(s.out, "Set Your Initial Balance")
	fmt.Fprint(s.out, "Enter total money you have: ")
	line, ok, err := s.readLine(ctx)
	if err != nil {
		return "", false, err
	}
	if !ok {
		fmt.Fprintln(s.out)
	}
	return line, ok, nil
}

// Run activates the view and processes commands until quit, end of input
// or ctx cancellation.
func (s *Shell) Run(ctx context.Context, app Actions) error {
	defer s.stop()

	fmt.Fprintln(s.out, "denario - type 'help' for commands")
	if err := app.Resume(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("resume: %w", err)
	}

	for {
		fmt.Fprint(s.out, "> ")
		line, ok, err := s.readLine(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}

		quit, err := s.dispatch(ctx, app, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if quit {
			return nil
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, app Actions, line string) (bool, error) {
	word, rest := nextToken(line)
	if word == "" {
		return false, nil
	}

	cmd := strings.ToLower(word)
	s.logger.DebugContext(ctx, "Command received", "command", cmd)

	switch cmd {
	case "add", "spend":
		amount, description := nextToken(rest)
		_, err := app.RecordExpense(ctx, amount, strings.TrimSpace(description))
		return false, s.report(ctx, err, "Expense recorded!")

	case "balance":
		s.ShowBalance(app.Balance())

	case "history", "list":
		s.printHistory()

	case "reset":
		return false, s.confirmReset(ctx, app)

	case "help":
		fmt.Fprintln(s.out, helpText)

	case "quit", "exit":
		return true, nil

	default:
		fmt.Fprintf(s.out, "Unknown command %q, type 'help' for commands\n", cmd)
	}

	return false, nil
}

func (s *Shell) confirmReset(ctx context.Context, app Actions) error {
	fmt.Fprint(s.out, "This deletes every expense and your balance. Type 'yes' to confirm: ")
	answer, ok, err := s.readLine(ctx)
	if err != nil {
		return err
	}
	if !ok || !strings.EqualFold(strings.TrimSpace(answer), "yes") {
		fmt.Fprintln(s.out, "Reset cancelled.")
		return nil
	}

	if err := s.report(ctx, app.ResetEverything(ctx), "Everything was reset."); err != nil {
		return err
	}
	// Back to first run: the view becomes active again
	return s.report(ctx, app.Resume(ctx), "")
}

func (s *Shell) printHistory() {
	s.mu.Lock()
	listing := s.listing
	s.mu.Unlock()

	if len(listing) == 0 {
		fmt.Fprintln(s.out, "No expenses recorded.")
		return
	}
	for _, e := range listing {
		fmt.Fprintf(s.out, "  %s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e)
	}
}

// report prints the outcome of an action. Only context cancellation is
// returned; everything else is shown to the user and the shell carries on.
func (s *Shell) report(ctx context.Context, err error, success string) error {
	var (
		inputErr   *core.InputError
		persistErr *core.PersistenceError
	)
	switch {
	case err == nil:
		if success != "" {
			fmt.Fprintln(s.out, success)
		}
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, core.ErrEmptyAmount):
		fmt.Fprintln(s.out, "Please enter an amount")
	case errors.As(err, &inputErr):
		fmt.Fprintln(s.out, "Please enter a valid, positive amount")
	case errors.As(err, &persistErr):
		s.logger.ErrorContext(ctx, "Action failed", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypePersistence)
		fmt.Fprintln(s.out, "Something went wrong, please try again")
	default:
		s.logger.ErrorContext(ctx, "Action failed", applog.FieldError, err)
		fmt.Fprintln(s.out, "Something went wrong, please try again")
	}
	return nil
}

func (s *Shell) readLine(ctx context.Context) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", false, s.readErr
		}
		return line, true, nil
	}
}

// nextToken splits off the first whitespace-delimited word. rest is returned
// untouched, inner spacing included.
func nextToken(line string) (word, rest string) {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], line[i:]
}

func (s *Shell) stop() {
	s.once.Do(func() { close(s.done) })
}
