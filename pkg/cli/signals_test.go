package cli

import (
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Error("context cancelled before any signal")
	default:
	}

	if ctx.Done() == nil {
		t.Error("context has no Done channel")
	}
}

func TestContextCancellationFlow(t *testing.T) {
	ctx := SetupSignalHandler()

	serverDone := make(chan bool)
	go func() {
		<-ctx.Done()
		serverDone <- true
	}()

	select {
	case <-serverDone:
		t.Error("shutdown triggered without a signal")
	case <-time.After(10 * time.Millisecond):
	}
}
