package main

import (
	"errors"
	"testing"

	"lingomic/internal/domain"
)

func TestOperationMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind  domain.OperationKind
		state domain.OperationState
		want  string
	}{
		{domain.OperationTranscribe, domain.OperationStateRunning, "Transcribing…"},
		{domain.OperationInterpret, domain.OperationStateRunning, "Transcribing…"},
		{domain.OperationTranslate, domain.OperationStateRunning, "Translating…"},
		{domain.OperationImprove, domain.OperationStateRunning, "Improving…"},
		{domain.OperationSpeak, domain.OperationStateRunning, "Speaking"},
		{domain.OperationTranscribe, domain.OperationStateSucceeded, "Transcript ready"},
		{domain.OperationTranslate, domain.OperationStateSucceeded, "Translation ready"},
		{domain.OperationImprove, domain.OperationStateSucceeded, "Text improved"},
		{domain.OperationInterpret, domain.OperationStateSucceeded, "Interpretation spoken"},
		{domain.OperationSpeak, domain.OperationStateSucceeded, "Speech started"},
		{domain.OperationSpeak, domain.OperationStateCancelled, "Cancelled"},
		{domain.OperationTranslate, domain.OperationStateFailed, "Failed"},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+string(tc.state), func(t *testing.T) {
			t.Parallel()
			if got := operationMessage(tc.kind, tc.state); got != tc.want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := operationMessage("unknown", domain.OperationStateIdle); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}

func TestErrorTitle(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorKind]string{
		errorKindStartup:             "Startup failed",
		domain.KindPermissionDenied:  "Recording error",
		domain.KindDeviceConfig:      "Recording error",
		domain.KindEncoderInit:       "Recording error",
		domain.KindMissingCredential: "API key missing",
		domain.KindNetwork:           "Network error",
		domain.KindService:           "Service error",
		domain.KindFileIO:            "File error",
		domain.KindNothingToProcess:  "Nothing to process",
		domain.KindDecode:            "Processing error",
		domain.KindEmptyResponse:     "Processing error",
		domain.KindUnknown:           "Unknown error",
	}
	for kind, want := range cases {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			if got := errorTitle(kind); got != want {
				t.Fatalf("unexpected title: %q", got)
			}
		})
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
	if _, err := app.Translate(); !errors.Is(err, bootErr) {
		t.Fatalf("bindings must report the boot error, got %v", err)
	}
}

func TestGetSnapshotWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	snap := app.GetSnapshot()
	if snap.State != domain.OperationStateIdle || snap.Processing || snap.ErrorMessage != "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	app.bootErr = errors.New("boot")
	snap = app.GetSnapshot()
	if snap.ErrorMessage != "boot" {
		t.Fatalf("unexpected boot snapshot: %+v", snap)
	}
	if app.HasAPIKey() {
		t.Fatalf("uninitialized app has no key")
	}
	if info := app.GetRuntimeInfo(); info["error"] != "boot" {
		t.Fatalf("unexpected runtime info: %v", info)
	}
}

func TestEventsIgnoredBeforeStartup(t *testing.T) {
	t.Parallel()

	app := &App{}
	app.StateChanged(domain.Snapshot{})
	app.OperationStateChanged("id", domain.OperationSpeak, domain.OperationStateRunning)
	app.OperationError(domain.KindNetwork, "offline")
	app.Cancel()
	app.Clear()
}

func TestRefSkipsMissingOperation(t *testing.T) {
	t.Parallel()

	got, err := ref(nil, nil)
	if err != nil || got != (OperationRef{}) {
		t.Fatalf("expected empty ref, got %+v %v", got, err)
	}
	want := errors.New("nope")
	if _, err := ref(nil, want); !errors.Is(err, want) {
		t.Fatalf("expected error passthrough, got %v", err)
	}
}
