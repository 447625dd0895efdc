package custody

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	transferFailed := fmt.Errorf("%w: %w", ErrTransferFailed, errors.New("reverted"))
	halted := errors.Join(transferFailed, fmt.Errorf("%w: stranded", ErrInconsistentState))

	tests := []struct {
		name      string
		err       error
		notFound  bool
		retryable bool
		fatal     bool
	}{
		{"funding not found", fmt.Errorf("get: %w", ErrFundingNotFound), true, false, false},
		{"withdrawal not found", ErrWithdrawalNotFound, true, false, false},
		{"oracle unavailable", fmt.Errorf("%w: stale", ErrOracleUnavailable), false, true, false},
		{"transfer failed", transferFailed, false, true, false},
		{"transfer failed and halted", halted, false, false, true},
		{"halted", fmt.Errorf("%w: earlier failure", ErrHalted), false, false, true},
		{"overflow", ErrOverflow, false, false, true},
		{"too small", ErrContributionTooSmall, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v", got)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable = %v", got)
			}
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal = %v", got)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyRollback, false},
		{"rollback", PolicyRollback, false},
		{"halt", PolicyHalt, false},
		{"retry", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestMultiError(t *testing.T) {
	var me MultiError
	if me.HasErrors() {
		t.Fatal("empty MultiError has errors")
	}
	me.Add(nil)
	me.Add(ValidationError{Field: "owner", Message: "required"})
	me.Add(ErrInvalidInput)

	if len(me.Errors) != 2 {
		t.Fatalf("errors: %v", me.Errors)
	}
	if !errors.Is(me, ErrInvalidInput) {
		t.Error("errors.Is does not see wrapped sentinel")
	}
	var ve ValidationError
	if !errors.As(me, &ve) || ve.Field != "owner" {
		t.Errorf("errors.As: %+v", ve)
	}
}
