package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

const (
	exitInternal     = 1
	exitInvalidInput = 2
	exitNotFound     = 3
)

// ErrorExitCode maps err to the process exit status.
func ErrorExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, ErrInvalidConfigFile):
		return exitInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return exitNotFound
	default:
		return exitInternal
	}
}

// FormatError renders err with its category.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	switch ErrorExitCode(err) {
	case exitInvalidInput:
		return fmt.Sprintf("Error [invalid-input]: %v", err)
	case exitNotFound:
		return fmt.Sprintf("Error [not-found]: %v", err)
	default:
		return fmt.Sprintf("Error [internal]: %v", err)
	}
}

// PrintError writes err to w, if any.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(w, FormatError(err))
}
