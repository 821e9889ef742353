package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCode(t *testing.T) {
	meta := MetadataFor(CodeValidation)
	if meta.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation, got %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatal("validation errors should allow details")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "store write failed")
	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should unwrap to cause")
	}
	if As(err).Code() != CodeDependency {
		t.Fatalf("unexpected code %s", As(err).Code())
	}
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(CodeHardware, nil, "camera unavailable")
	if err.Unwrap() != nil {
		t.Fatal("expected no cause")
	}
	if err.Message() != "camera unavailable" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestAsReturnsNilForForeignError(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for non-typed error")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	inner := stdErrors.New("inner")
	err := Wrap(CodeConflict, inner, "outer")
	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain to include cause, got %v", dump.Chain)
	}
}
