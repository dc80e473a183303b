package main

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// primaryHarness is instance A: it owns the endpoint and drives a fake window.
type primaryHarness struct {
	guard     *SingletonGuard
	window    *fakeWindow
	presenter *WindowPresenter
	trigger   *TriggerService
}

func startPrimary(t *testing.T, input io.Reader, opts StreamListenerOptions) *primaryHarness {
	t.Helper()

	guard := NewSingletonGuard("127.0.0.1:0")
	role, err := guard.Acquire()
	require.NoError(t, err)
	require.Equal(t, RolePrimary, role)

	window := &fakeWindow{width: 320}
	presenter := NewWindowPresenter(window, fakeScreens{area: sampleWorkArea()}, inlineDispatch, PresenterOptions{Delay: testDelay, Margin: 16})

	trigger := NewTriggerService(guard.Listener(), input, opts)
	trigger.setPresenter(presenter)
	trigger.start()

	t.Cleanup(func() {
		trigger.ServiceShutdown()
		guard.Close()
	})

	// the window stays hidden until a trigger arrives
	time.Sleep(4 * testDelay)
	require.Zero(t, window.FrontCount())
	require.False(t, window.IsVisible())
	return &primaryHarness{guard: guard, window: window, presenter: presenter, trigger: trigger}
}

func TestSecondaryLaunchRaisesPrimaryWindow(t *testing.T) {
	a := startPrimary(t, nil, StreamListenerOptions{})

	b := NewSingletonGuard(a.guard.Addr())
	role, err := b.Acquire()
	require.NoError(t, err)
	require.Equal(t, RoleSecondary, role)
	require.NoError(t, NewHandoffClient(a.guard.Addr()).NotifyPrimary(context.Background()))

	require.Eventually(t, func() bool { return a.window.FrontCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	x, y := a.window.Position()
	assert.Equal(t, 1920-320-16, x)
	assert.Equal(t, 16, y)
	assert.True(t, a.window.IsVisible())
	assert.False(t, a.window.IsMinimised())

	assert.Equal(t, []string{"position", "show", "front"}, a.window.Calls())

	time.Sleep(4 * testDelay)
	assert.Equal(t, 1, a.window.FrontCount())
}

func TestSecondaryRunExitsCleanly(t *testing.T) {
	isolateUserDirs(t)
	a := startPrimary(t, nil, StreamListenerOptions{})

	port := a.guard.Listener().Addr().(*net.TCPAddr).Port
	err := run(context.Background(), &runOptions{port: port}, []string{"chrome-extension://abcdefghijklmnop/"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return a.window.FrontCount() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, a.window.IsVisible())
}

func TestHostStreamRaisesPrimaryWindow(t *testing.T) {
	pr, pw := io.Pipe()
	a := startPrimary(t, pr, StreamListenerOptions{})

	_, err := pw.Write(EncodeFrame([]byte(`{"type":"UNKNOWN_TYPE"}`)))
	require.NoError(t, err)
	time.Sleep(4 * testDelay)
	assert.Zero(t, a.window.FrontCount())

	// opening twice in quick succession collapses into one raise
	_, err = pw.Write(EncodeFrame([]byte(`{"type":"FILE_DIALOG_OPENING"}`)))
	require.NoError(t, err)
	_, err = pw.Write(EncodeFrame([]byte(`{"type":"FILE_DIALOG_OPENING"}`)))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return a.window.FrontCount() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(4 * testDelay)
	assert.Equal(t, 1, a.window.FrontCount())
	assert.True(t, a.window.IsVisible())

	require.NoError(t, pw.Close())
	select {
	case <-a.trigger.done:
	case <-time.After(5 * time.Second):
		t.Fatal("host listener did not stop at end of input")
	}
}

func TestTruncatedHostStreamLeavesCommandChannelWorking(t *testing.T) {
	pr, pw := io.Pipe()
	a := startPrimary(t, pr, StreamListenerOptions{})

	go func() {
		pw.Write(header(100))
		pw.Write([]byte(`{"type":`))
		pw.Close()
	}()

	select {
	case <-a.trigger.done:
	case <-time.After(5 * time.Second):
		t.Fatal("host listener did not stop on a truncated frame")
	}

	require.NoError(t, NewHandoffClient(a.guard.Addr()).NotifyPrimary(context.Background()))
	require.Eventually(t, func() bool { return a.window.FrontCount() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestShutdownWaitsForFinishedHostStream(t *testing.T) {
	pr, pw := io.Pipe()
	a := startPrimary(t, pr, StreamListenerOptions{})

	require.NoError(t, pw.Close())
	start := time.Now()
	require.NoError(t, a.trigger.ServiceShutdown())
	assert.Less(t, time.Since(start), hostDrainTimeout)

	select {
	case <-a.trigger.done:
	default:
		t.Fatal("host listener still running after shutdown")
	}
}

func TestShutdownDoesNotBlockOnAttachedHostStream(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	a := startPrimary(t, pr, StreamListenerOptions{})

	start := time.Now()
	require.NoError(t, a.trigger.ServiceShutdown())
	assert.GreaterOrEqual(t, time.Since(start), hostDrainTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)

	_, err := net.DialTimeout("tcp", a.guard.Addr(), time.Second)
	assert.Error(t, err, "command server should be closed")
}
