package tui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

type jobStatus string

const (
	jobKindOpen     jobKind = "open"
	jobKindRender   jobKind = "render"
	jobKindGenerate jobKind = "generate"
	jobKindExport   jobKind = "export"
	jobKindAnki     jobKind = "anki"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs blocking work off the update loop. Every job announces itself
// with a jobSignalMsg and finishes with a jobResultEnvelope carrying the
// runner's message.
type jobBus struct {
	counter int64
	running map[string]jobSnapshot
}

func newJobBus() *jobBus {
	return &jobBus{running: map[string]jobSnapshot{}}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		payload, err := runner(context.Background())
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		log.Printf("[jobs] %s %s (duration=%s, err=%v)", kind, snapshot.Status, snapshot.Duration, err)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

// Track records a job transition. It is called from the update loop only.
func (b *jobBus) Track(s jobSnapshot) {
	if s.Status == jobStatusRunning {
		b.running[s.ID] = s
		return
	}
	delete(b.running, s.ID)
}

// Running counts the in-flight jobs of kind.
func (b *jobBus) Running(kind jobKind) int {
	n := 0
	for _, s := range b.running {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func (b *jobBus) Busy() bool { return len(b.running) > 0 }
