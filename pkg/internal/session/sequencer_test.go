package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	engine "github.com/meridiem-chat/meridiem-client/pkg/internal/sync"
	"github.com/spf13/viper"
)

type fakeStream struct {
	onConnect func()
	onEvent   func(models.Event)
}

func (f *fakeStream) SetConnectHandler(handler func())           { f.onConnect = handler }
func (f *fakeStream) SetEventHandler(handler func(models.Event)) { f.onEvent = handler }

type fakeLoop struct {
	dispatched []models.Event
	posted     int
}

func (f *fakeLoop) Dispatch(ev models.Event)      { f.dispatched = append(f.dispatched, ev) }
func (f *fakeLoop) Post(fn func(*engine.Reducer)) { f.posted++ }

type staticDetector struct {
	activity *models.Activity
}

func (d staticDetector) Detect() *models.Activity { return d.activity }

func TestEveryReconnectTriggersBootstrap(t *testing.T) {
	stream := &fakeStream{}
	loop := &fakeLoop{}
	NewSequencer(stream, loop, nil).Start()

	stream.onConnect()
	stream.onConnect()

	if loop.posted != 2 {
		t.Fatalf("bootstrap posts = %d, want one per connect", loop.posted)
	}
}

func TestLiveEventsFlowIntoTheLoop(t *testing.T) {
	stream := &fakeStream{}
	loop := &fakeLoop{}
	NewSequencer(stream, loop, nil).Start()

	stream.onEvent(models.NewEvent(models.EventTyping, models.TypingPayload{ChannelID: "c-1", UserID: "u-1", Started: true}))

	if len(loop.dispatched) != 1 || loop.dispatched[0].Type != models.EventTyping {
		t.Fatalf("dispatched = %#v", loop.dispatched)
	}
}

func TestPollWithoutDetectorIsInert(t *testing.T) {
	loop := &fakeLoop{}
	NewSequencer(&fakeStream{}, loop, nil).PollActivity()

	if loop.posted != 0 {
		t.Fatalf("poll without a detector must not post")
	}
}

func TestPollReportsEveryTick(t *testing.T) {
	loop := &fakeLoop{}
	seq := NewSequencer(&fakeStream{}, loop, staticDetector{activity: &models.Activity{Name: "Chess", Type: "game"}})

	seq.PollActivity()
	seq.PollActivity()

	// Duplicate suppression belongs to the reducer; the poll always reports.
	if loop.posted != 2 {
		t.Fatalf("posted = %d, want 2", loop.posted)
	}
}

func TestProcessScanFindsKnownBinary(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "1234"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "1234", "comm"), []byte("chess\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	viper.Set("activity.processes", map[string]string{"chess": "Chess Masters"})
	t.Cleanup(func() { viper.Set("activity.processes", map[string]string{}) })

	detector := &ProcessScanDetector{procRoot: root}
	activity := detector.Detect()
	if activity == nil || activity.Name != "Chess Masters" {
		t.Fatalf("activity = %#v", activity)
	}
}

func TestProcessScanIgnoresUnknownBinaries(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "42"), 0o755)
	os.WriteFile(filepath.Join(root, "42", "comm"), []byte("bash\n"), 0o644)
	viper.Set("activity.processes", map[string]string{"chess": "Chess Masters"})
	t.Cleanup(func() { viper.Set("activity.processes", map[string]string{}) })

	detector := &ProcessScanDetector{procRoot: root}
	if activity := detector.Detect(); activity != nil {
		t.Fatalf("unexpected activity %#v", activity)
	}
}
