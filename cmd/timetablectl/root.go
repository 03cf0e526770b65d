package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rootOptions struct {
	input   string
	verbose bool
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "timetablectl",
		Short:         "Generate and inspect department timetables offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVarP(&opts.input, "input", "i", "", "roster file (.json or .xlsx)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log skipped roster rows")
	_ = cmd.MarkPersistentFlagRequired("input")

	cmd.AddCommand(newGenerateCommand(opts), newLimitsCommand(opts))
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(cmd.ErrOrStderr()), zapcore.DebugLevel)
	return zap.New(core)
}
