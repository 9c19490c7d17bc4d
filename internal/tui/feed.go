package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjack/internal/game"
)

// eventsMsg carries every session event queued since the last delivery
type eventsMsg []game.Event

// feed queues session events for the program loop. OnEvent runs on the
// goroutine performing the action, so it only appends and never blocks.
type feed struct {
	mu     sync.Mutex
	queue  []game.Event
	notify chan struct{}
}

func newFeed() *feed {
	return &feed{notify: make(chan struct{}, 1)}
}

func (f *feed) OnEvent(e game.Event) {
	f.mu.Lock()
	f.queue = append(f.queue, e)
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
}

func (f *feed) drain() []game.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.queue
	f.queue = nil
	return events
}

// wait returns a command that blocks until events are queued
func (f *feed) wait() tea.Cmd {
	return func() tea.Msg {
		<-f.notify
		return eventsMsg(f.drain())
	}
}
