package util

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTaskError(t *testing.T) {
	baseErr := errors.New("boom")
	taskErr := WrapTaskError(3, baseErr)

	if taskErr == nil {
		t.Fatal("expected error, got nil")
	}

	if taskErr.Error() != "element 3: boom" {
		t.Errorf("unexpected message %q", taskErr.Error())
	}

	if !errors.Is(taskErr, baseErr) {
		t.Error("expected task error to wrap base error")
	}

	var te *TaskError
	if !errors.As(taskErr, &te) || te.Index != 3 {
		t.Errorf("expected TaskError with index 3, got %v", taskErr)
	}

	if WrapTaskError(1, nil) != nil {
		t.Error("expected nil when wrapping nil")
	}
}

func TestClusterError(t *testing.T) {
	baseErr := errors.New("connection failed")
	clusterErr := WrapClusterError("test-cluster", baseErr)

	expectedMsg := `cluster "test-cluster": connection failed`
	if clusterErr.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, clusterErr.Error())
	}

	if !errors.Is(clusterErr, baseErr) {
		t.Error("expected cluster error to wrap base error")
	}

	if WrapClusterError("test", nil) != nil {
		t.Error("expected nil when wrapping nil")
	}
}

func TestMultiError(t *testing.T) {
	t.Run("empty multi-error", func(t *testing.T) {
		m := &MultiError{}
		if m.ErrorOrNil() != nil {
			t.Error("expected nil for empty multi-error")
		}
		if m.Last() != nil {
			t.Error("expected nil Last for empty multi-error")
		}
	})

	t.Run("nil receiver", func(t *testing.T) {
		var m *MultiError
		if m.ErrorOrNil() != nil {
			t.Error("expected nil for nil receiver")
		}
	})

	t.Run("single error", func(t *testing.T) {
		m := NewMultiError([]error{errors.New("test error")})
		if m.Error() != "test error" {
			t.Errorf("expected %q, got %q", "test error", m.Error())
		}
	})

	t.Run("multiple errors keep order", func(t *testing.T) {
		first := errors.New("error 1")
		last := errors.New("error 3")
		m := NewMultiError([]error{first, nil, errors.New("error 2"), last})

		if m.Len() != 3 {
			t.Fatalf("expected 3 errors, got %d", m.Len())
		}
		if m.Last() != last {
			t.Errorf("expected last error %v, got %v", last, m.Last())
		}
		if !strings.Contains(m.Error(), "3 errors occurred") {
			t.Errorf("unexpected message %q", m.Error())
		}
		if !errors.Is(m, first) || !errors.Is(m, last) {
			t.Error("expected errors.Is to see every wrapped error")
		}
	})

	t.Run("truncates long lists", func(t *testing.T) {
		m := &MultiError{}
		for i := 0; i < 15; i++ {
			m.Add(fmt.Errorf("error %d", i))
		}
		m.Add(nil)

		if m.Len() != 15 {
			t.Errorf("expected 15 errors, got %d", m.Len())
		}
		if !strings.Contains(m.Error(), "... and 5 more errors") {
			t.Errorf("expected truncation notice, got %q", m.Error())
		}
	})
}

func TestCombineErrors(t *testing.T) {
	if CombineErrors(nil, nil) != nil {
		t.Error("expected nil when all errors are nil")
	}

	err := CombineErrors(nil, ErrTimeout)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected combined error to wrap ErrTimeout, got %v", err)
	}
}

func TestWrapErrorf(t *testing.T) {
	if WrapErrorf(nil, "context %d", 1) != nil {
		t.Error("expected nil when wrapping nil")
	}

	err := WrapErrorf(ErrConnectionFailed, "dial %s", "prod")
	if err.Error() != "dial prod: connection failed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !IsConnectionError(err) {
		t.Error("expected wrapped connection error")
	}
}

func TestErrorCheckers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"timeout", fmt.Errorf("x: %w", ErrTimeout), IsTimeout, true},
		{"not timeout", errors.New("x"), IsTimeout, false},
		{"deadline", fmt.Errorf("probe: %w", context.DeadlineExceeded), IsTimeout, true},
		{"not found", WrapClusterError("a", ErrClusterNotFound), IsNotFound, true},
		{"connection", ErrConnectionFailed, IsConnectionError, true},
		{"panic", WrapTaskError(0, ErrTaskPanic), IsTaskPanic, true},
		{"no panic", WrapTaskError(0, errors.New("x")), IsTaskPanic, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"timeout", ErrTimeout, "timed out"},
		{"not found", ErrClusterNotFound, "not found"},
		{"connection", ErrConnectionFailed, "connect"},
		{"shutdown", ErrPoolShutdown, "shutting down"},
		{"config", ErrInvalidConfig, "configuration"},
		{"unknown", errors.New("weird"), "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FriendlyError(tt.err)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("expected %q to contain %q", got, tt.contains)
			}
		})
	}
}
