package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"denario/internal/balance"
	"denario/internal/core"
	"denario/internal/services"
	"denario/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	ledger *memory.Ledger
	prefs  *memory.Preferences
	ctrl   *services.Controller
	out    *bytes.Buffer
	shell  *Shell
}

func newSession(t *testing.T, input io.Reader) *session {
	t.Helper()
	s := &session{
		ledger: memory.NewLedger(),
		prefs:  memory.NewPreferences(),
		out:    &bytes.Buffer{},
	}
	s.shell = New(input, s.out, nil)
	s.ctrl = services.NewController(s.ledger, balance.NewStore(s.prefs), s.shell, nil)
	require.NoError(t, s.ctrl.Init(context.Background()))
	return s
}

func TestShellSession(t *testing.T) {
	script := strings.Join([]string{
		"100",
		"add 25.50 lunch at noon",
		"add",
		"add -5 refund",
		"spend abc",
		"balance",
		"history",
		"frobnicate",
		"help",
		"reset",
		"no",
		"reset",
		"yes",
		"",
		"balance",
		"quit",
		"add 1 never read",
	}, "\n") + "\n"

	ctx := context.Background()
	s := newSession(t, strings.NewReader(script))
	require.NoError(t, s.shell.Run(ctx, s.ctrl))

	out := s.out.String()
	assert.Contains(t, out, "Balance: $100.00")
	assert.Contains(t, out, "Expense recorded!")
	assert.Contains(t, out, "Balance: $74.50")
	assert.Contains(t, out, "1 expense in history, $25.50 spent")
	assert.Contains(t, out, "Please enter an amount")
	assert.Equal(t, 2, strings.Count(out, "Please enter a valid, positive amount"))
	assert.Contains(t, out, "$25.50 - lunch at noon")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
	assert.Contains(t, out, "record an expense")
	assert.Contains(t, out, "Reset cancelled.")
	assert.Contains(t, out, "Everything was reset.")
	assert.Equal(t, 2, strings.Count(out, "Set Your Initial Balance"))

	assert.True(t, s.ctrl.Balance().Equal(decimal.Zero))
	all, err := s.ledger.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "commands after quit are not processed")

	firstRun, err := balance.NewStore(s.prefs).IsFirstRun(ctx)
	require.NoError(t, err)
	assert.False(t, firstRun)
}

func TestShellHistoryNewestFirst(t *testing.T) {
	script := "50\nadd 1 first\nadd 2\nadd 3 third\nhistory\nexit\n"
	s := newSession(t, strings.NewReader(script))
	require.NoError(t, s.shell.Run(context.Background(), s.ctrl))

	out := s.out.String()
	assert.Contains(t, out, "3 expenses in history, $6.00 spent")
	assert.Contains(t, out, "Balance: $44.00")

	third := strings.Index(out, "$3.00 - third")
	second := strings.Index(out, "  $2.00\n")
	first := strings.Index(out, "$1.00 - first")
	require.True(t, third >= 0 && second >= 0 && first >= 0, out)
	assert.Less(t, third, second)
	assert.Less(t, second, first)
}

func TestShellEndOfInputAtPrompt(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, strings.NewReader(""))
	require.NoError(t, s.shell.Run(ctx, s.ctrl))

	assert.Contains(t, s.out.String(), "Balance: $0.00")
	firstRun, err := balance.NewStore(s.prefs).IsFirstRun(ctx)
	require.NoError(t, err)
	assert.False(t, firstRun, "cancelling the prompt completes the first run")
}

func TestShellStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	s := newSession(t, pr)
	done := make(chan error, 1)
	go func() { done <- s.shell.Run(ctx, s.ctrl) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not stop after cancellation")
	}
}

func TestShellKeepsDescriptionSpacing(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, strings.NewReader("10\n  add   3   tea   with  milk  \nquit\n"))
	require.NoError(t, s.shell.Run(ctx, s.ctrl))

	all, err := s.ledger.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "tea   with  milk", all[0].Description)
	assert.True(t, all[0].Amount.Equal(decimal.NewFromInt(3)))
}

func TestShellAcceptsLongLines(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("x", 200*1024)
	s := newSession(t, strings.NewReader("10\nadd 1 "+long+"\nquit\n"))
	require.NoError(t, s.shell.Run(ctx, s.ctrl))

	all, err := s.ledger.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Description, len(long))
}

func TestShellReportsUnreadableInput(t *testing.T) {
	tooLong := strings.Repeat("x", maxLineBytes+1)
	s := newSession(t, strings.NewReader("10\n"+tooLong+"\nadd 1 after\n"))

	err := s.shell.Run(context.Background(), s.ctrl)
	assert.ErrorIs(t, err, bufio.ErrTooLong)

	all, listErr := s.ledger.ListAll(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, all)
}

type failingLedger struct {
	*memory.Ledger
}

func (failingLedger) Insert(context.Context, decimal.Decimal, string) (core.Expense, error) {
	return core.Expense{}, errors.New("disk full")
}

func TestShellReportsPersistenceFailure(t *testing.T) {
	out := &bytes.Buffer{}
	prefs := memory.NewPreferences()
	sh := New(strings.NewReader("20\nadd 5 coffee\nbalance\nquit\n"), out, nil)
	ctrl := services.NewController(failingLedger{memory.NewLedger()}, balance.NewStore(prefs), sh, nil)
	require.NoError(t, ctrl.Init(context.Background()))

	require.NoError(t, sh.Run(context.Background(), ctrl))

	text := out.String()
	assert.Contains(t, text, "Something went wrong, please try again")
	assert.NotContains(t, text, "Expense recorded!")
	assert.Contains(t, text, "Balance: $20.00")
}
