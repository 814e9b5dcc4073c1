package main

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/littlesms/littlesms-go/internal/app"
	"github.com/littlesms/littlesms-go/internal/config"
	"github.com/littlesms/littlesms-go/internal/logger"
	"github.com/littlesms/littlesms-go/pkg/littlesms"
)

var exampleUsage = strings.TrimSpace(`
  littlesms balance
  littlesms send -m "Your code is 1234" -t 79990001122 --sender shop
  littlesms status 236234623 236234624
  littlesms history --recipient 79990001122 --date-from 2024-01-01
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// globalFlags override values loaded from env/config.
type globalFlags struct {
	insecure bool
	host     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "littlesms",
		Short:         "Send SMS and query your account through the LittleSMS API",
		Long:          "Credentials come from LITTLESMS_USER and LITTLESMS_KEY (env or configs/.env).",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&flags.insecure, "insecure", false, "use http instead of https")
	root.PersistentFlags().StringVar(&flags.host, "host", "", "API host (default littlesms.ru)")

	root.AddCommand(
		newBalanceCmd(flags),
		newSendCmd(flags),
		newStatusCmd(flags),
		newPriceCmd(flags),
		newHistoryCmd(flags),
		newRecentCmd(flags),
	)
	return root
}

func newBalanceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, flags, func(ctx context.Context, svc *app.Service) (any, error) {
				return svc.Balance(ctx)
			})
		},
	}
}

func newSendCmd(flags *globalFlags) *cobra.Command {
	var req app.SendRequest

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to one or more recipients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, flags, func(ctx context.Context, svc *app.Service) (any, error) {
				return svc.Send(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&req.Message, "message", "m", "", "message text")
	cmd.Flags().StringSliceVarP(&req.Recipients, "to", "t", nil, "recipient phone number (repeat or comma separate)")
	cmd.Flags().StringVar(&req.Sender, "sender", "", "sender name, 11 symbols max")
	cmd.Flags().BoolVar(&req.Test, "test", false, "test mode, nothing is delivered")
	_ = cmd.MarkFlagRequired("message")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status [message-id...]",
		Short: "Show delivery status; without ids, of every journalled message",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, flags, func(ctx context.Context, svc *app.Service) (any, error) {
				return svc.Status(ctx, args)
			})
		},
	}
}

func newPriceCmd(flags *globalFlags) *cobra.Command {
	var (
		message    string
		recipients []string
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show what sending a message would cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, flags, func(ctx context.Context, svc *app.Service) (any, error) {
				return svc.Price(ctx, message, recipients)
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "message text")
	cmd.Flags().StringSliceVarP(&recipients, "to", "t", nil, "recipient phone number (repeat or comma separate)")
	_ = cmd.MarkFlagRequired("message")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List sent messages, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := historyFilter(cmd.Flags())
			if err != nil {
				return err
			}
			return withService(cmd, flags, func(ctx context.Context, svc *app.Service) (any, error) {
				return svc.History(ctx, filter)
			})
		},
	}
	fs := cmd.Flags()
	fs.Int64("history-id", 0, "history id")
	fs.String("recipient", "", "recipient phone number")
	fs.String("sender", "", "sender name")
	fs.String("status", "", "message status")
	fs.String("date-from", "", "lower date limit")
	fs.String("date-to", "", "upper date limit")
	fs.Int64("id", 0, "message id")
	return cmd
}

func newRecentCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List message ids recorded in the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, flags, func(_ context.Context, svc *app.Service) (any, error) {
				return svc.Recent()
			})
		},
	}
}

// historyFilter maps explicitly set flags to filter fields; untouched flags stay unset.
func historyFilter(fs *pflag.FlagSet) (littlesms.HistoryFilter, error) {
	var (
		f   littlesms.HistoryFilter
		err error
	)
	if f.HistoryID, err = optionalInt(fs, "history-id"); err != nil {
		return f, err
	}
	if f.ID, err = optionalInt(fs, "id"); err != nil {
		return f, err
	}
	for name, dst := range map[string]*littlesms.Optional[string]{
		"recipient": &f.Recipient,
		"sender":    &f.Sender,
		"status":    &f.Status,
		"date-from": &f.DateFrom,
		"date-to":   &f.DateTo,
	} {
		if *dst, err = optionalString(fs, name); err != nil {
			return f, err
		}
	}
	return f, nil
}

func optionalString(fs *pflag.FlagSet, name string) (littlesms.Optional[string], error) {
	if !fs.Changed(name) {
		return littlesms.Optional[string]{}, nil
	}
	v, err := fs.GetString(name)
	if err != nil {
		return littlesms.Optional[string]{}, fmt.Errorf("read --%s: %w", name, err)
	}
	return littlesms.Some(v), nil
}

func optionalInt(fs *pflag.FlagSet, name string) (littlesms.Optional[int64], error) {
	if !fs.Changed(name) {
		return littlesms.Optional[int64]{}, nil
	}
	v, err := fs.GetInt64(name)
	if err != nil {
		return littlesms.Optional[int64]{}, fmt.Errorf("read --%s: %w", name, err)
	}
	return littlesms.Some(v), nil
}

// withService loads config, builds the service, runs fn and prints its result as JSON.
func withService(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, svc *app.Service) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("insecure") {
		cfg.Insecure = flags.insecure
	}
	if flags.host != "" {
		cfg.Host = flags.host
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.DebugObj("littlesms starting", "config", cfg.Redacted())

	svc, err := app.NewService(cmd.Context(), cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize service", "error", err.Error())
		return err
	}
	defer svc.Close()

	result, err := fn(cmd.Context(), svc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
