package display

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"releaseday/internal/clock"
	"releaseday/internal/countdown"
	"releaseday/internal/refresh"
)

var (
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleNumber = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleLabel  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleParty  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleHint   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const cellWidth = 10

// Notifier is told once when the countdown finishes.
type Notifier interface {
	Play()
}

// Terminal is the full-screen view. It owns its refresh driver and the last
// computed state.
type Terminal struct {
	screen   tcell.Screen
	target   countdown.Target
	labels   Labels
	clock    clock.Clock
	interval time.Duration
	notify   Notifier
	onTick   func(time.Time, countdown.State)

	tracker countdown.Tracker
}

type TerminalOption func(*Terminal)

func WithNotifier(n Notifier) TerminalOption {
	return func(t *Terminal) { t.notify = n }
}

// WithTickHook lets another sink (e.g. an announcer) see every state.
func WithTickHook(fn func(time.Time, countdown.State)) TerminalOption {
	return func(t *Terminal) { t.onTick = fn }
}

// OpenScreen creates and initializes the real terminal screen.
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

func NewTerminal(screen tcell.Screen, target countdown.Target, labels Labels, c clock.Clock, interval time.Duration, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen:   screen,
		target:   target,
		labels:   labels,
		clock:    c,
		interval: interval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run blocks until the user quits (Esc, Ctrl+C, q) or ctx is done. The
// caller still owns the screen and must Fini it.
func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make(chan tickState, 1)
	driver := refresh.New(t.clock, t.interval, func(now time.Time) {
		st := tickState{now: now, state: t.target.Compute(now)}
		select {
		case states <- st:
		case <-ctx.Done():
		}
	})

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	// the first tick is delivered synchronously into the buffered channel
	if err := driver.Start(ctx); err != nil {
		return err
	}
	defer driver.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-states:
			t.Observe(st.now, st.state)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev) {
					return nil
				}
			case *tcell.EventResize:
				t.screen.Sync()
				if s := t.tracker.State(); s != nil {
					t.Draw(s)
				}
			}
		}
	}
}

type tickState struct {
	now   time.Time
	state countdown.State
}

// Observe records a tick and redraws.
func (t *Terminal) Observe(now time.Time, s countdown.State) {
	changed, finished := t.tracker.Observe(s)
	if changed && finished && t.notify != nil {
		t.notify.Play()
	}
	if t.onTick != nil {
		t.onTick(now, t.tracker.State())
	}
	t.Draw(t.tracker.State())
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// Draw paints s centered on the screen.
func (t *Terminal) Draw(s countdown.State) {
	t.screen.Clear()
	w, h := t.screen.Size()

	switch st := s.(type) {
	case countdown.Counting:
		top := h/2 - 4
		t.center(top, w, t.labels.Title, styleTitle)
		t.center(top+1, w, t.labels.Subtitle, styleLabel)

		cells := st.Remaining.Cells()
		left := (w - cellWidth*len(cells)) / 2
		for i, c := range cells {
			x := left + i*cellWidth
			t.put(x+(cellWidth-runewidth.StringWidth(c.Value))/2, top+3, c.Value, styleNumber)
			t.put(x+(cellWidth-runewidth.StringWidth(c.Label))/2, top+4, c.Label, styleLabel)
		}
		t.center(top+6, w, t.labels.Motivation, styleLabel)
	case countdown.Finished:
		top := h/2 - 2
		t.center(top, w, t.labels.Celebrate, styleParty)
		t.center(top+2, w, t.labels.ShareText, styleLabel)
		t.center(top+3, w, t.labels.ShareLink, styleHint)
	}

	t.center(h-1, w, "q / Esc to quit", styleHint)
	t.screen.Show()
}

func (t *Terminal) center(y, w int, s string, style tcell.Style) {
	if s == "" {
		return
	}
	t.put((w-runewidth.StringWidth(s))/2, y, s, style)
}

func (t *Terminal) put(x, y int, s string, style tcell.Style) {
	if x < 0 {
		x = 0
	}
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		t.screen.SetContent(x, y, r, nil, style)
		x += rw
	}
}
