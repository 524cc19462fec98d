package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	cl "cycles/internal/cli"
	"cycles/internal/config"
	"cycles/internal/game"
	"cycles/internal/script"
	"cycles/internal/sim"
	"cycles/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL
	tuningFile := cfg.TuningFile
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	root := &cobra.Command{
		Use:          "cycles",
		Short:        "Rings, sockets and colored orbs",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL for remote commands")
	root.PersistentFlags().StringVar(&tuningFile, "tuning", tuningFile, "YAML tuning file for local games")

	root.AddCommand(
		newPlayCmd(&tuningFile, logger),
		newSimCmd(&tuningFile, logger),
		newStateCmd(&apiBase),
		newOffersCmd(&apiBase),
		newBuyCmd(&apiBase),
		newColorCmd(&apiBase),
		newLedgerCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		printError(fmt.Sprintf("error: %v", err))
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newPlayCmd(tuningFile *string, logger *slog.Logger) *cobra.Command {
	var recordPath string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a local game in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			tuning, err := config.LoadTuning(*tuningFile)
			if err != nil {
				return err
			}
			session, err := game.NewSession(tuning, logger)
			if err != nil {
				return err
			}
			var rec *script.Script
			if recordPath != "" {
				rec = &script.Script{Tuning: &tuning}
			}
			model := tui.New(session, tui.Options{Record: rec, Logger: logger})
			if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return err
			}
			if rec != nil {
				if err := script.Save(recordPath, *rec); err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Recorded %d commands to %s", len(rec.Commands), recordPath))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&recordPath, "record", "", "write accepted actions to this script file")
	return cmd
}

func newSimCmd(tuningFile *string, logger *slog.Logger) *cobra.Command {
	var (
		seconds    float64
		step       float64
		scriptPath string
		autopilot  bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a headless game on a simulated clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sim.Options{Seconds: seconds, Step: step}
			tuning, err := config.LoadTuning(*tuningFile)
			if err != nil {
				return err
			}
			if scriptPath != "" {
				sc, err := script.Load(scriptPath)
				if err != nil {
					return err
				}
				if sc.Tuning != nil && *tuningFile == "" {
					tuning = *sc.Tuning
				}
				opts.Script = &sc
				if !cmd.Flags().Changed("seconds") {
					opts.Seconds = sc.Duration() + tuning.CycleSeconds
				}
			}
			if autopilot {
				opts.Autopilot = sim.NewAutopilot(logger)
			}
			session, err := game.NewSession(tuning, logger)
			if err != nil {
				return err
			}
			rep, err := sim.Run(cmd.Context(), session, opts, logger)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			renderReport(rep)
			return nil
		},
	}
	cmd.Flags().Float64Var(&seconds, "seconds", 600, "simulated seconds")
	cmd.Flags().Float64Var(&step, "step", sim.DefaultStep, "clock step in seconds")
	cmd.Flags().StringVar(&scriptPath, "script", "", "replay a recorded script")
	cmd.Flags().BoolVar(&autopilot, "autopilot", false, "let the autopilot buy and paint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the server's live game",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).State(ctx)
			if err != nil {
				return err
			}
			noteRun(*apiBase, snap.RunID)
			renderState(snap)
			return nil
		},
	}
}

func newOffersCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "offers",
		Short: "List upgrades for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			offers, err := newClient(apiBase).Offers(ctx)
			if err != nil {
				return err
			}
			renderOffers(offers)
			return nil
		},
	}
}

func newBuyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <offer#|upgrade>",
		Short: "Buy an offered upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			offers, err := client.Offers(ctx)
			if err != nil {
				return err
			}
			offer, err := pickOffer(args[0], offers)
			if err != nil {
				return err
			}
			_, err = client.Purchase(ctx, game.Purchase{Upgrade: offer.Upgrade, Cost: offer.Cost}, uuid.NewString())
			var apiErr *cl.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && strings.Contains(apiErr.Message, game.ErrInsufficientFunds.Error()) {
				printWarn(fmt.Sprintf("Can't afford %s ($%s).", offer.Upgrade.Description(), offer.Cost.Scientific()))
				return nil
			}
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Bought %s for $%s.", offer.Upgrade.Description(), offer.Cost.Scientific()))
			return nil
		},
	}
}

func newColorCmd(apiBase *string) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "color <ring> <socket> [color]",
		Short: "Paint or clear a socket",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("ring must be a number: %w", err)
			}
			socket, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("socket must be a number: %w", err)
			}
			in := game.SocketColorInput{Ring: game.RingID(ring), Socket: socket, Remove: remove}
			if !remove {
				if len(args) < 3 {
					return fmt.Errorf("color is required unless --clear is set")
				}
				c, err := game.ParseColor(strings.ToLower(args[2]))
				if err != nil {
					return err
				}
				in.Color = c
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := newClient(apiBase).SetSocketColor(ctx, in)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Ring %d socket %d is now %s.", ring, view.Index, orbColor(view.Color).Sprint(view.Color.String())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "clear", false, "remove the orb instead of painting")
	return cmd
}

func newLedgerCmd(apiBase *string) *cobra.Command {
	var (
		runID string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show recorded settlements and purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			entries, err := newClient(apiBase).Ledger(ctx, runID, limit)
			if err != nil {
				return err
			}
			renderLedger(entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run ID (default: the server's live run)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries")
	return cmd
}

// noteRun warns when the server restarted since the last look.
func noteRun(apiBase, runID string) {
	changed, err := cl.ObserveRun(apiBase, runID)
	if err != nil {
		printWarn("could not save local session: " + err.Error())
		return
	}
	if changed {
		printWarn("The server started a new run since you last checked; earlier progress is gone.")
	}
}
