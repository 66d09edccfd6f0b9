package tui

import (
	"context"
	"errors"
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type pingMsg struct{}

func TestJobBusTracksRunningJobs(t *testing.T) {
	bus := newJobBus()
	fail := errors.New("boom")
	cmd := bus.Start(jobKindExport, func(context.Context) (tea.Msg, error) {
		return pingMsg{}, fail
	})

	var signal jobSignalMsg
	var result jobResultEnvelope
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		msg := queue[0]()
		queue = queue[1:]
		switch msg := msg.(type) {
		case jobSignalMsg:
			signal = msg
			bus.Track(msg.Snapshot)
			if bus.Running(jobKindExport) != 1 || !bus.Busy() {
				t.Fatal("started job should be tracked as running")
			}
		case jobResultEnvelope:
			result = msg
			bus.Track(msg.Snapshot)
		default:
			v := reflect.ValueOf(msg)
			for i := 0; i < v.Len(); i++ {
				queue = append(queue, v.Index(i).Interface().(tea.Cmd))
			}
		}
	}

	if signal.Snapshot.ID != "export-1" || signal.Snapshot.Status != jobStatusRunning {
		t.Fatalf("unexpected start snapshot %+v", signal.Snapshot)
	}
	if result.Snapshot.Status != jobStatusFailed || result.Snapshot.Err != "boom" {
		t.Fatalf("unexpected result snapshot %+v", result.Snapshot)
	}
	if _, ok := result.Payload.(pingMsg); !ok {
		t.Fatalf("payload should be forwarded, got %T", result.Payload)
	}
	if bus.Busy() {
		t.Fatal("finished job should no longer be running")
	}
}
