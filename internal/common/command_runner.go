package common

import (
	"context"
	"io"
	"time"

	"applytrack/internal/errors"
)

// OperationFunc performs the remote work of a command.
type OperationFunc[Output any] func(context.Context) (Output, error)

// RunCommand encapsulates the common logic of CLI commands: run the
// operation, log its outcome and write the result in the requested format.
func RunCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	stdout io.Writer,
	name string,
	operation OperationFunc[Output],
) error {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	outputHandler := NewOutputHandler(logger, stdout)

	// Fail on a bad output path before talking to the backend
	if err := outputHandler.fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	start := time.Now()
	result, err := operation(ctx)
	if err != nil {
		logger.LogError(err, "Command failed", "command", name)
		return err
	}
	logger.Debug("Command completed", "command", name, "duration", time.Since(start))

	return outputHandler.HandleOutput(result, cmdConfig)
}
