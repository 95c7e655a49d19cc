package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dragsort/internal/engine"
	"github.com/roach88/dragsort/internal/ir"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database        string
	Category        string
	Task            string
	CompletionDelay time.Duration

	// SessionIDs overrides the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionIDs engine.SessionIDGenerator
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlayCommand(&PlayOptions{RootOptions: rootOpts})
}

func newPlayCommand(opts *PlayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a task from the terminal",
		Long: `Play one catalogue task with commands read line by line from stdin.

Commands:
  drag <item> <zone>    pointer drag of an item onto a zone
  touch <item> <zone>   touch drag of an item onto a zone
  touch-off <item>      touch drag released outside every zone
  state                 print the zones and what they hold
  help                  list the commands

Blank lines and lines starting with # are ignored. Every resolved drop is
recorded to the database under a new session id.

Example:
  printf 'drag item-0 even\nstate\n' | dragsort play --db ./dragsort.db --category math_compare --task cmp_sort_01`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category id (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&opts.Task, "task", "", "task id (required)")
	_ = cmd.MarkFlagRequired("task")
	cmd.Flags().DurationVar(&opts.CompletionDelay, "completion-delay", engine.DefaultCompletionDelay, "delay before the success message")

	return cmd
}

// player prints engine output for one terminal session.
//
// Output comes from two goroutines: the engine loop (outcomes, hooks and
// sound) and the command reader (state and usage errors). out serializes
// them.
type player struct {
	mu  sync.Mutex
	out io.Writer

	session *engine.Session
	acks    chan struct{} // one per applied gesture event
	success chan struct{} // closed by the success hook

	latest engine.SceneSnapshot // last snapshot taken on the loop
	ctx    context.Context
}

func (p *player) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// PlayClick implements engine.Sound.
func (p *player) PlayClick() error {
	p.printf("*click*\n")
	return nil
}

// observe runs on the loop goroutine after every applied event.
func (p *player) observe(step engine.Step) {
	for _, a := range step.Attempts {
		mark := "✗"
		if a.Outcome == ir.OutcomeAccepted {
			mark = "✓"
		}
		p.printf("%s %s -> %s: %s (%d/%d)\n", mark, a.ItemID, a.ZoneID, a.Outcome, a.PlacedCount, p.session.ItemCount())
	}

	snap := p.session.Snapshot()
	p.mu.Lock()
	p.latest = snap
	p.mu.Unlock()

	if !isGesture(step.Event.Type) {
		return
	}
	select {
	case p.acks <- struct{}{}:
	case <-p.ctx.Done():
	}
}

func isGesture(t engine.EventType) bool {
	switch t {
	case engine.EventDragStart, engine.EventDragOver, engine.EventDragLeave, engine.EventDrop,
		engine.EventDragEnd, engine.EventTouchStart, engine.EventTouchMove, engine.EventTouchEnd:
		return true
	}
	return false
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := opts.logger()

	st, err := openStore(opts.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	task, err := st.ReadTask(ctx, opts.Category, opts.Task)
	if isNotFound(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown task %s/%s", opts.Category, opts.Task))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read task", err)
	}
	if task.Puzzle == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("template %s is not sortable", task.Template))
	}

	ids := opts.SessionIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}

	p := &player{
		out:     cmd.OutOrStdout(),
		acks:    make(chan struct{}),
		success: make(chan struct{}),
		ctx:     ctx,
	}
	var successOnce sync.Once
	p.session = engine.NewSession(engine.Mount{}, *task.Puzzle, engine.Hooks{
		OnFail: func() { p.printf("Try again!\n") },
		OnSuccess: func() {
			p.printf("All items sorted!\n")
			successOnce.Do(func() { close(p.success) })
		},
	},
		engine.WithSessionID(ids.Generate()),
		engine.WithCompletionDelay(opts.CompletionDelay),
		engine.WithSound(p),
		engine.WithLogger(logger),
	)
	p.latest = p.session.Snapshot()

	hash, err := ir.PuzzleHash(*task.Puzzle)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash puzzle", err)
	}
	if err := st.WriteSession(ctx, ir.SessionRecord{
		ID:         p.session.ID(),
		CategoryID: task.CategoryID,
		TaskID:     task.ID,
		PuzzleHash: hash,
		Puzzle:     *task.Puzzle,
		ItemCount:  p.session.ItemCount(),
	}); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: failed to record session", ErrCodeDatabase), err)
	}

	eng := engine.New(p.session,
		engine.WithRecorder(st),
		engine.WithObserver(p.observe),
	)

	p.printf("Session %s: %s/%s\n", p.session.ID(), task.CategoryID, task.ID)
	if task.Instruction != "" {
		p.printf("%s\n", task.Instruction)
	}
	p.printState()

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(ctx)
	}()

	readErr := p.readCommands(eng, cmd.InOrStdin())

	// Let the success hook fire before the loop stops if the last command
	// completed the session.
	p.mu.Lock()
	complete := p.latest.Complete
	p.mu.Unlock()
	if complete {
		select {
		case <-p.success:
		case <-ctx.Done():
		case <-time.After(opts.CompletionDelay + time.Second):
			logger.Warn("success hook did not fire", "delay", opts.CompletionDelay)
		}
	}

	eng.Stop()
	if err := <-done; err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	if readErr != nil {
		return WrapExitError(ExitCommandError, "failed to read commands", readErr)
	}
	return nil
}

// readCommands turns input lines into gesture events. Each command waits
// until the loop has applied all of its events, so the loop is idle
// between commands apart from deferred callbacks.
func (p *player) readCommands(eng *engine.Engine, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		events, err := p.parseCommand(strings.Fields(line))
		if err != nil {
			p.printf("error: %v\n", err)
			continue
		}
		for _, ev := range events {
			if !eng.Enqueue(ev) {
				return nil
			}
		}
		for range events {
			select {
			case <-p.acks:
			case <-p.ctx.Done():
				return nil
			}
		}
	}
	return scanner.Err()
}

// parseCommand returns the events for one command. Commands that only
// print (state, help) return no events.
func (p *player) parseCommand(fields []string) ([]engine.Event, error) {
	s := p.session
	checkItem := func(id string) error {
		if !s.HasItem(id) {
			return fmt.Errorf("unknown item %q", id)
		}
		return nil
	}
	checkZone := func(id string) error {
		if !s.HasZone(id) {
			return fmt.Errorf("unknown zone %q", id)
		}
		return nil
	}

	switch fields[0] {
	case "drag":
		if len(fields) != 3 {
			return nil, fmt.Errorf("usage: drag <item> <zone>")
		}
		item, zone := fields[1], fields[2]
		if err := checkItem(item); err != nil {
			return nil, err
		}
		if err := checkZone(zone); err != nil {
			return nil, err
		}
		return []engine.Event{
			{Type: engine.EventDragStart, ItemID: item},
			{Type: engine.EventDragOver, ZoneID: zone},
			{Type: engine.EventDrop, ZoneID: zone},
			{Type: engine.EventDragEnd, ItemID: item},
		}, nil

	case "touch", "touch-off":
		off := fields[0] == "touch-off"
		if (off && len(fields) != 2) || (!off && len(fields) != 3) {
			if off {
				return nil, fmt.Errorf("usage: touch-off <item>")
			}
			return nil, fmt.Errorf("usage: touch <item> <zone>")
		}
		item := fields[1]
		if err := checkItem(item); err != nil {
			return nil, err
		}
		ix, iy, ok := s.ItemCenter(item)
		if !ok {
			return nil, fmt.Errorf("item %q is already placed", item)
		}
		// (1, 1) is the mount's top-left corner, outside every zone.
		tx, ty := 1.0, 1.0
		if !off {
			if err := checkZone(fields[2]); err != nil {
				return nil, err
			}
			tx, ty, _ = s.ZoneCenter(fields[2])
		}
		return []engine.Event{
			{Type: engine.EventTouchStart, ItemID: item, X: ix, Y: iy},
			{Type: engine.EventTouchMove, X: tx, Y: ty},
			{Type: engine.EventTouchEnd},
		}, nil

	case "state":
		p.printState()
		return nil, nil

	case "help":
		p.printf("commands: drag <item> <zone> | touch <item> <zone> | touch-off <item> | state\n")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command %q (try help)", fields[0])
}

// printState prints the latest snapshot.
func (p *player) printState() {
	p.mu.Lock()
	snap := p.latest
	p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Placed %d/%d", snap.PlacedCount, snap.ItemCount)
	if snap.Complete {
		b.WriteString(" (complete)")
	}
	b.WriteString("\n")
	for _, z := range snap.Zones {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", z.ID, z.Label, strings.Join(z.Placed, " "))
	}
	var waiting []string
	for _, it := range snap.Items {
		waiting = append(waiting, fmt.Sprintf("%s=%s", it.ID, it.Content))
	}
	if len(waiting) > 0 {
		fmt.Fprintf(&b, "  items: %s\n", strings.Join(waiting, " "))
	}
	p.printf("%s", b.String())
}
