// Package main provides the CLI entrypoint for jumbletype.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/adriansteffan/jumbletype/internal/config"
	"github.com/adriansteffan/jumbletype/internal/generator"
	"github.com/adriansteffan/jumbletype/internal/mapping"
	"github.com/adriansteffan/jumbletype/internal/model"
	"github.com/adriansteffan/jumbletype/internal/resultsui"
	"github.com/adriansteffan/jumbletype/internal/stats"
	"github.com/adriansteffan/jumbletype/internal/store"
	"github.com/adriansteffan/jumbletype/internal/trial"
	"github.com/adriansteffan/jumbletype/internal/tui"
)

const (
	defaultButtonLabel = "Continue"
	defaultTrendWindow = 10
)

var (
	trialStimulus        string
	trialButtonLabel     string
	trialRequireResponse bool
	trialPlaceholder     string
	trialMap             string
	trialMapFile         string
	trialJumble          bool
	trialSeed            int64
	trialNoSave          bool
	trialJSON            bool

	resultsSince       string
	resultsLast        int
	resultsTrendWindow int
	resultsTUI         bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jumbletype",
		Short:         "Terminal jumbled-input trial runner",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrialCmd,
	}

	rootCmd.Flags().StringVar(&trialStimulus, "stimulus", "", "stimulus text shown above the input field")
	rootCmd.Flags().StringVar(&trialButtonLabel, "button-label", defaultButtonLabel, "submit control label")
	rootCmd.Flags().BoolVar(&trialRequireResponse, "require-response", true, "disable the submit control while the input is empty")
	rootCmd.Flags().StringVar(&trialPlaceholder, "placeholder", "", "placeholder text for the empty field")
	rootCmd.Flags().StringVar(&trialMap, "map", "", "mapping pairs, e.g. \"a=q,b=w\"")
	rootCmd.Flags().StringVar(&trialMapFile, "map-file", "", "mapping file (one typed=displayed pair per line)")
	rootCmd.Flags().BoolVar(&trialJumble, "jumble", false, "generate a random a-z jumble mapping")
	rootCmd.Flags().Int64Var(&trialSeed, "seed", 0, "seed for --jumble (0: random)")
	rootCmd.Flags().BoolVar(&trialNoSave, "no-save", false, "do not record the trial")
	rootCmd.Flags().BoolVar(&trialJSON, "json", false, "print the result record as JSON")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func runTrialCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "stimulus", &trialStimulus, fileCfg.Trial.Stimulus)
	applyStringConfig(cmd, "button-label", &trialButtonLabel, fileCfg.Trial.ButtonLabel)
	applyBoolConfig(cmd, "require-response", &trialRequireResponse, fileCfg.Trial.RequireResponse)
	applyStringConfig(cmd, "placeholder", &trialPlaceholder, fileCfg.Trial.Placeholder)
	applyStringConfig(cmd, "map-file", &trialMapFile, fileCfg.Trial.MapFile)
	applyBoolConfig(cmd, "jumble", &trialJumble, fileCfg.Trial.Jumble)
	applyInt64Config(cmd, "seed", &trialSeed, fileCfg.Trial.Seed)

	cfg := model.TrialConfig{
		Stimulus:        trialStimulus,
		ButtonLabel:     trialButtonLabel,
		RequireResponse: trialRequireResponse,
		Placeholder:     trialPlaceholder,
	}
	if err := validateTrialConfig(cfg); err != nil {
		return err
	}

	charMap, err := buildMapping(fileCfg)
	if err != nil {
		return err
	}

	ctrl := trial.New(charMap, cfg.RequireResponse)
	trialModel := tui.NewModel(ctrl, cfg)
	program := tea.NewProgram(trialModel, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	final, ok := finalModel.(*tui.Model)
	if !ok || final.Result() == nil {
		log.Warn("trial aborted; nothing recorded")
		return nil
	}
	result := *final.Result()

	if !trialNoSave {
		if err := saveTrial(cmd.Context(), ctrl, cfg, result); err != nil {
			log.Error("failed to record trial", "err", err)
		}
	}

	if trialJSON {
		return printResultJSON(cmd, result)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Response: %q (raw %q, rt %dms, %d events)\n",
		result.Response, result.RawInput, result.RT, len(result.Log))
	return err
}

func buildMapping(fileCfg config.FileConfig) (mapping.Mapping, error) {
	// Precedence, weakest first: TOML table, map-file, --map, --jumble.
	charMap := mapping.Mapping{}
	if len(fileCfg.Mapping) > 0 {
		charMap = charMap.Merge(mapping.Mapping(fileCfg.Mapping))
	}
	if trialMapFile != "" {
		fromFile, err := mapping.LoadFile(resolveMapFilePath(trialMapFile))
		if err != nil {
			return nil, fmt.Errorf("failed to load mapping file: %w", err)
		}
		charMap = charMap.Merge(fromFile)
	}
	if trialMap != "" {
		pairs, err := mapping.ParsePairs(trialMap)
		if err != nil {
			return nil, fmt.Errorf("invalid --map value: %w", err)
		}
		charMap = charMap.Merge(pairs)
	}
	if trialJumble {
		gen := generator.New()
		if trialSeed != 0 {
			gen = generator.NewSeeded(trialSeed)
		}
		charMap = charMap.Merge(gen.Jumble([]rune(generator.DefaultAlphabet)))
	}
	return charMap, nil
}

// resolveMapFilePath keeps absolute and relative paths as given and
// resolves bare names against the XDG mapping directory.
func resolveMapFilePath(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasPrefix(name, ".") {
		return name
	}
	return filepath.Join(config.DefaultMappingDir(), name)
}

func saveTrial(ctx context.Context, ctrl *trial.Controller, cfg model.TrialConfig, result model.Result) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("failed to close db", "err", cerr)
		}
	}()

	keypresses, backspaces := countActions(result.Log)
	rec := model.TrialRecord{
		StartedAt:   ctrl.StartedAt(),
		EndedAt:     ctrl.StartedAt().Add(time.Duration(result.RT) * time.Millisecond),
		Stimulus:    cfg.Stimulus,
		ButtonLabel: cfg.ButtonLabel,
		Response:    result.Response,
		RawInput:    result.RawInput,
		RTMs:        result.RT,
		Keypresses:  keypresses,
		Backspaces:  backspaces,
	}
	if _, err := st.InsertTrial(ctx, rec, result.Log); err != nil {
		return fmt.Errorf("failed to insert trial: %w", err)
	}
	return nil
}

func countActions(log []model.LogEntry) (keypresses, backspaces int) {
	for _, entry := range log {
		switch entry.Action {
		case model.ActionKeypress:
			keypresses++
		case model.ActionBackspace:
			backspaces++
		}
	}
	return keypresses, backspaces
}

func printResultJSON(cmd *cobra.Command, result model.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show recorded trials",
		RunE:  runResultsCmd,
	}
	cmd.Flags().StringVar(&resultsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&resultsLast, "last", 0, "limit to last N trials")
	cmd.Flags().IntVar(&resultsTrendWindow, "trend-window", defaultTrendWindow, "moving average window for the RT trend")
	cmd.Flags().BoolVar(&resultsTUI, "tui", false, "browse trials interactively")
	return cmd
}

func runResultsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if resultsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", resultsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if resultsTrendWindow < 1 {
		return fmt.Errorf("--trend-window must be >= 1")
	}

	cfg := model.ResultsConfig{
		Since:       sinceTime,
		Last:        resultsLast,
		TrendWindow: resultsTrendWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("failed to close db", "err", cerr)
		}
	}()

	if resultsTUI {
		program := tea.NewProgram(resultsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run results TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Trials); err != nil {
		return err
	}
	if err := stats.RenderTrialTable(out, report.Trials); err != nil {
		return err
	}
	if err := stats.RenderKeyTable(out, report.KeyAggs); err != nil {
		return err
	}
	return stats.RenderTrend(out, report.Trials, cfg.TrendWindow)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [trial-id]",
		Short: "Print a recorded trial as a JSON result record",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	var id int64
	if len(args) == 1 {
		parsed, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid trial id %q", args[0])
		}
		id = parsed
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("failed to close db", "err", cerr)
		}
	}()

	rec, err := st.GetTrial(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load trial: %w", err)
	}
	entries, err := st.ListEvents(cmd.Context(), rec.TrialID)
	if err != nil {
		return fmt.Errorf("failed to load trial events: %w", err)
	}
	return printResultJSON(cmd, model.Result{
		Response: rec.Response,
		RawInput: rec.RawInput,
		Log:      entries,
		RT:       rec.RTMs,
	})
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateTrialConfig(cfg model.TrialConfig) error {
	if strings.TrimSpace(cfg.ButtonLabel) == "" {
		return fmt.Errorf("--button-label must not be empty")
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# jumbletype configuration
# Uncomment a value to enable it. CLI flags override config values.

[trial]
# stimulus = ""             # Text shown above the input field
# button-label = %q         # Submit control label
# require-response = true   # Disable submit while the input is empty
# placeholder = ""          # Placeholder text for the empty field
# map-file = ""             # Mapping file (name under mappings dir, or a path)
# jumble = false            # Generate a random a-z jumble mapping
# seed = 0                  # Seed for jumble (0: random)

# Substitution table: typed character -> displayed string.
# [mapping]
# a = "q"
# b = "w"
`, defaultButtonLabel)
}
