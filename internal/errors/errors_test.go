package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "op only",
			err:      &Error{Op: "client.Submit"},
			expected: "client.Submit: ",
		},
		{
			name:     "op and message",
			err:      &Error{Op: "config.Load", Msg: "missing credentials"},
			expected: "config.Load: missing credentials",
		},
		{
			name:     "op message and err",
			err:      &Error{Op: "upload.Stor", Msg: "reads.bam", Err: stderrors.New("timeout")},
			expected: "upload.Stor: reads.bam: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestE(t *testing.T) {
	underlying := stderrors.New("connection refused")
	err := E(Op("portal.FindSample"), KindNetwork, underlying, "query failed")

	if err.Op != "portal.FindSample" {
		t.Errorf("Op = %q, want portal.FindSample", err.Op)
	}
	if err.Kind != KindNetwork {
		t.Errorf("Kind = %v, want KindNetwork", err.Kind)
	}
	if err.Msg != "query failed" {
		t.Errorf("Msg = %q, want 'query failed'", err.Msg)
	}
	if !stderrors.Is(err, underlying) {
		t.Error("expected errors.Is to find the underlying error")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Error("Wrap(op, nil) should return nil")
	}
	if WrapMsg("op", "msg", nil) != nil {
		t.Error("WrapMsg(op, msg, nil) should return nil")
	}
}

func TestKindOf(t *testing.T) {
	inner := E(Op("inner"), KindUpload, stderrors.New("boom"))
	outer := Wrap("outer", inner)

	if got := KindOf(outer); got != KindUpload {
		t.Errorf("KindOf = %v, want KindUpload", got)
	}
	if got := KindOf(stderrors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want KindUnknown", got)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindConfig, "config"},
		{KindNetwork, "network"},
		{KindSubmission, "submission"},
		{KindUpload, "upload"},
		{KindParse, "parse"},
		{KindIO, "io"},
		{KindUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}
