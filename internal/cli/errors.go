package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// userError marks a failure caused by the invocation rather than the
// system: bad arguments, unknown IDs, rejected writes.
type userError struct {
	err error
}

func (e userError) Error() string { return e.err.Error() }
func (e userError) Unwrap() error { return e.err }

func userErrorf(format string, args ...any) error {
	return userError{fmt.Errorf(format, args...)}
}

// userSentinels are store errors the caller can fix.
var userSentinels = []error{
	types.ErrNotFound,
	types.ErrRemoved,
	types.ErrTableNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrUnknownEnum,
	types.ErrAlreadyOpen,
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue userError
	if errors.As(err, &ue) || types.IsConstraint(err) {
		return exitUserError
	}
	for _, target := range userSentinels {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// exactArgs is cobra.ExactArgs reporting a user error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return userError{err}
		}
		return nil
	}
}
