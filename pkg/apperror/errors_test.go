package apperror

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeSpecMalformed, "spec could not be parsed"),
			expected: "[SPEC_MALFORMED] spec could not be parsed",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeMissingParameter, "required parameter missing", "image"),
			expected: "[MISSING_PARAMETER] required parameter missing (field: image)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected int
	}{
		{"spec not found", CodeSpecNotFound, 404},
		{"not found", CodeNotFound, 404},
		{"spec malformed", CodeSpecMalformed, 400},
		{"missing parameter", CodeMissingParameter, 400},
		{"duplicate id", CodeDuplicateId, 400},
		{"api key missing", CodeApiKeyMissing, 401},
		{"api key invalid", CodeApiKeyInvalid, 401},
		{"unauthorized", CodeUnauthorized, 401},
		{"file too large", CodeFileTooLarge, 413},
		{"poll timeout", CodePollTimeout, 504},
		{"server job failed", CodeServerJobFailed, 502},
		{"http error", CodeHttpError, 502},
		{"internal", CodeInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "test message")
			if got := err.HTTPStatus(); got != tt.expected {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(CodeSpecNotFound, "spec file missing")

	if err.Code != CodeSpecNotFound {
		t.Errorf("Code = %v, want %v", err.Code, CodeSpecNotFound)
	}
	if err.Message != "spec file missing" {
		t.Errorf("Message = %v, want %v", err.Message, "spec file missing")
	}
	if err.Severity != SeverityError {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityError)
	}
}

func TestNewWarning(t *testing.T) {
	err := NewWarning(CodeDuplicateId, "overwriting name-index entry")

	if err.Severity != SeverityWarning {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityWarning)
	}
}

func TestNewCritical(t *testing.T) {
	err := NewCritical(CodeInternal, "critical failure")

	if err.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityCritical)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeHttpError, "bad gateway").
		WithDetails("status", 502).
		WithDetails("provider", "runpod")

	if err.Details["status"] != 502 {
		t.Errorf("Details[status] = %v, want 502", err.Details["status"])
	}
	if err.Details["provider"] != "runpod" {
		t.Errorf("Details[provider] = %v, want runpod", err.Details["provider"])
	}
}

func TestWithField(t *testing.T) {
	err := New(CodeMissingParameter, "missing").WithField("image")

	if err.Field != "image" {
		t.Errorf("Field = %v, want image", err.Field)
	}
}

func TestWithSeverity(t *testing.T) {
	err := New(CodeInternal, "invalid").WithSeverity(SeverityCritical)

	if err.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityCritical)
	}
}

func TestIs(t *testing.T) {
	err := New(CodeSpecNotFound, "not found")

	if !Is(err, CodeSpecNotFound) {
		t.Error("Is() should return true for matching code")
	}
	if Is(err, CodeSpecMalformed) {
		t.Error("Is() should return false for non-matching code")
	}
	if Is(errors.New("regular error"), CodeSpecNotFound) {
		t.Error("Is() should return false for non-Error")
	}
}

func TestCode(t *testing.T) {
	err := New(CodeNotFound, "no path")

	if Code(err) != CodeNotFound {
		t.Errorf("Code() = %v, want %v", Code(err), CodeNotFound)
	}

	regularErr := errors.New("regular error")
	if Code(regularErr) != CodeInternal {
		t.Errorf("Code() for regular error = %v, want %v", Code(regularErr), CodeInternal)
	}
}

func TestFromHTTPStatus(t *testing.T) {
	t.Run("200 returns nil", func(t *testing.T) {
		if err := FromHTTPStatus(200, ""); err != nil {
			t.Errorf("FromHTTPStatus(200) = %v, want nil", err)
		}
	})

	t.Run("401 is unauthorized", func(t *testing.T) {
		err := FromHTTPStatus(401, "unauthorized")
		if err.Code != CodeUnauthorized {
			t.Errorf("Code = %v, want %v", err.Code, CodeUnauthorized)
		}
	})

	t.Run("403 is unauthorized", func(t *testing.T) {
		err := FromHTTPStatus(403, "forbidden")
		if err.Code != CodeUnauthorized {
			t.Errorf("Code = %v, want %v", err.Code, CodeUnauthorized)
		}
	})

	t.Run("404 is not found", func(t *testing.T) {
		err := FromHTTPStatus(404, "missing")
		if err.Code != CodeNotFound {
			t.Errorf("Code = %v, want %v", err.Code, CodeNotFound)
		}
	})

	t.Run("500 is http error with body snippet", func(t *testing.T) {
		err := FromHTTPStatus(500, "internal failure")
		if err.Code != CodeHttpError {
			t.Errorf("Code = %v, want %v", err.Code, CodeHttpError)
		}
		if err.Details["body"] != "internal failure" {
			t.Errorf("Details[body] = %v, want internal failure", err.Details["body"])
		}
	})

	t.Run("body snippet truncated", func(t *testing.T) {
		long := make([]byte, 1000)
		for i := range long {
			long[i] = 'a'
		}
		err := FromHTTPStatus(500, string(long))
		if len(err.Details["body"].(string)) != 500 {
			t.Errorf("body snippet length = %d, want 500", len(err.Details["body"].(string)))
		}
	})
}

func TestIsWarning(t *testing.T) {
	warning := NewWarning(CodeDuplicateId, "name collision")
	err := New(CodeInternal, "invalid")

	if !IsWarning(warning) {
		t.Error("IsWarning() should return true for warning")
	}
	if IsWarning(err) {
		t.Error("IsWarning() should return false for error")
	}
}

func TestIsCritical(t *testing.T) {
	critical := NewCritical(CodeInternal, "critical")
	err := New(CodeInternal, "invalid")

	if !IsCritical(critical) {
		t.Error("IsCritical() should return true for critical")
	}
	if IsCritical(err) {
		t.Error("IsCritical() should return false for error")
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.expected {
			t.Errorf("Severity.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	t.Run("new validation errors", func(t *testing.T) {
		ve := NewValidationErrors()
		if ve.HasErrors() {
			t.Error("new ValidationErrors should not have errors")
		}
		if ve.HasWarnings() {
			t.Error("new ValidationErrors should not have warnings")
		}
		if !ve.IsValid() {
			t.Error("new ValidationErrors should be valid")
		}
	})

	t.Run("add error", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddError(CodeMissingParameter, "missing image")

		if !ve.HasErrors() {
			t.Error("should have errors")
		}
		if ve.IsValid() {
			t.Error("should not be valid")
		}
		if len(ve.Errors) != 1 {
			t.Errorf("errors count = %d, want 1", len(ve.Errors))
		}
	})

	t.Run("add warning", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddWarning(CodeDuplicateId, "name collision")

		if !ve.HasWarnings() {
			t.Error("should have warnings")
		}
		if !ve.IsValid() {
			t.Error("should be valid (warnings don't affect validity)")
		}
	})

	t.Run("add error with field", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddErrorWithField(CodeInvalidParameterValue, "invalid", "width")

		if ve.Errors[0].Field != "width" {
			t.Errorf("Field = %v, want width", ve.Errors[0].Field)
		}
	})

	t.Run("add via Add method", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.Add(NewWarning(CodeDuplicateId, "warning"))
		ve.Add(New(CodeMissingParameter, "error"))

		if len(ve.Warnings) != 1 {
			t.Errorf("warnings count = %d, want 1", len(ve.Warnings))
		}
		if len(ve.Errors) != 1 {
			t.Errorf("errors count = %d, want 1", len(ve.Errors))
		}
	})

	t.Run("merge", func(t *testing.T) {
		ve1 := NewValidationErrors()
		ve1.AddError(CodeMissingParameter, "error1")

		ve2 := NewValidationErrors()
		ve2.AddError(CodeInvalidParameterValue, "error2")
		ve2.AddWarning(CodeDuplicateId, "warning")

		ve1.Merge(ve2)

		if len(ve1.Errors) != 2 {
			t.Errorf("errors count = %d, want 2", len(ve1.Errors))
		}
		if len(ve1.Warnings) != 1 {
			t.Errorf("warnings count = %d, want 1", len(ve1.Warnings))
		}
	})

	t.Run("merge nil", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.Merge(nil) // should not panic
	})

	t.Run("error messages", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddError(CodeMissingParameter, "error1")
		ve.AddError(CodeInvalidParameterValue, "error2")

		messages := ve.ErrorMessages()
		if len(messages) != 2 {
			t.Errorf("messages count = %d, want 2", len(messages))
		}
	})

	t.Run("warning messages", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddWarning(CodeDuplicateId, "warning1")

		messages := ve.WarningMessages()
		if len(messages) != 1 {
			t.Errorf("messages count = %d, want 1", len(messages))
		}
		if messages[0] != "warning1" {
			t.Errorf("message = %v, want warning1", messages[0])
		}
	})
}
