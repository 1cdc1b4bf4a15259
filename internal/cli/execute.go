package cli

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Execute runs root through fang. Errors a command already wrote through
// its OutputFormatter are not printed again.
func Execute(ctx context.Context, root *cobra.Command) error {
	return fang.Execute(ctx, root, fang.WithErrorHandler(ErrorHandler))
}

// ErrorHandler prints err with fang's default rendering unless it is a
// reported ExitError.
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
