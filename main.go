// quicktrans is a double-click English to Chinese translation host with
// provider fallback, phonetic normalization and a local HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minios-linux/quicktrans/bench"
	"github.com/minios-linux/quicktrans/config"
	"github.com/minios-linux/quicktrans/dictionary"
	"github.com/minios-linux/quicktrans/failmem"
	"github.com/minios-linux/quicktrans/fetch"
	"github.com/minios-linux/quicktrans/i18n"
	"github.com/minios-linux/quicktrans/langmeta"
	"github.com/minios-linux/quicktrans/locale"
	"github.com/minios-linux/quicktrans/metrics"
	"github.com/minios-linux/quicktrans/phonetic"
	"github.com/minios-linux/quicktrans/provider"
	"github.com/minios-linux/quicktrans/server"
	"github.com/minios-linux/quicktrans/settings"
	"github.com/minios-linux/quicktrans/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	configPath string
	verbose    bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quicktrans",
		Short: i18n.T("English to Chinese translation with provider fallback"),
		Long: i18n.T(`quicktrans is the host side of the double-click translation extension.

Translates English text into Chinese through a chain of free providers,
falling back to the next one on failure, looks up pronunciation, and
rewrites IPA into a cleaned-up or DJ-style notation.

Commands:
  translate   Translate text (defaults to the last selection)
  lookup      Translate a word and show its phonetic and audio
  phonetic    Normalize an IPA transcription
  classify    Show how the locale classifier sees this machine
  prefs       Show or reset stored preferences
  bench       Measure provider success rate and latency
  serve       Run the local HTTP host for the browser extension

Providers:
  google        Google Translate (global users)
  baidu-proxy   Baidu Translate through a proxy (regional users)
  mymemory      MyMemory (regional fallback)
  lingva        Lingva (benchmark and custom chains)`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&configPath, "config", "", i18n.T("Path to quicktrans.yaml (default: ./quicktrans.yaml if present)"))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.T("Enable detailed logging"))

	root.AddCommand(
		newTranslateCmd(),
		newLookupCmd(),
		newPhoneticCmd(),
		newClassifyCmd(),
		newPrefsCmd(),
		newBenchCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Shared wiring
// ---------------------------------------------------------------------------

// app holds everything built from the configuration.
type app struct {
	cfg      *config.File
	log      *zap.Logger
	registry *provider.Registry
	memory   *failmem.Store
	fetcher  *fetch.Client
	metrics  *metrics.Collectors
	promReg  *prometheus.Registry
	orch     *translate.Orchestrator
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		registry: provider.New(cfg.Endpoints()),
		memory:   failmem.New(cfg.FailMemOptions()...),
		fetcher:  fetch.New(cfg.FetchOptions()),
		promReg:  prometheus.NewRegistry(),
	}
	a.metrics = metrics.New(a.promReg)
	a.orch = translate.New(a.registry, a.memory, a.fetcher,
		translate.WithLogger(log.Named("translate")),
		translate.WithChains(translate.ChainPolicy{Regional: cfg.Chains.Regional, Global: cfg.Chains.Global}),
		translate.WithMetrics(a.metrics),
		translate.WithDictionary(dictionary.New(a.fetcher, dictionary.WithLogger(log.Named("dictionary")))),
	)
	return a, nil
}

// newLogger returns a development logger when verbose, a no-op otherwise.
// User-facing output goes through logInfo and friends.
func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// resolveRegional picks the chain: explicit flags win, otherwise the
// environment is classified with the given (or configured) policy.
func resolveRegional(regional, global bool, policyName string, cfg *config.File) (bool, error) {
	if regional && global {
		return false, errors.New(i18n.T("--regional and --global are mutually exclusive"))
	}
	if regional || global {
		return regional, nil
	}
	policy := cfg.Policy()
	if policyName != "" {
		p, err := locale.ParsePolicy(policyName)
		if err != nil {
			return false, err
		}
		policy = p
	}
	return locale.DetectSignals().Classify(policy), nil
}

// resolveStyle: --style flag > stored phoneticType > config.
func resolveStyle(flag string, cfg *config.File) (phonetic.Style, error) {
	if flag != "" {
		return phonetic.ParseStyle(flag)
	}
	if p := settings.Load(); p.PhoneticType != "" {
		return phonetic.ParseStyle(p.EffectivePhoneticType())
	}
	return cfg.Style(), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  i18n.T(`Display version, commit hash, and build date.`),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("quicktrans version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		regional bool
		global   bool
		policy   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: i18n.T("Translate English text into Chinese"),
		Long: i18n.T(`Translate English text into Chinese.

Without arguments the last translated selection is used again. The chain
is chosen from the locale classifier unless --regional or --global is set.

Examples:
  quicktrans translate hello world
  quicktrans translate --regional "performance test"
  quicktrans translate --json internationalization`),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				text = strings.TrimSpace(settings.Load().SelectedText)
				if text == "" {
					return errors.New(i18n.T("no text given and no previous selection stored"))
				}
				logInfo(i18n.T("Using last selection: %s"), text)
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			isRegional, err := resolveRegional(regional, global, policy, a.cfg)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			res := a.orch.Translate(ctx, translate.Request{Text: text, IsRegionalUser: isRegional})

			if err := settings.SetSelectedText(text); err != nil {
				logWarning(i18n.T("Could not store selection: %v"), err)
			}

			if asJSON {
				return printJSON(res)
			}
			if !res.Success {
				return errors.New(i18n.T("Translation failed"))
			}
			logSuccess(i18n.T("Translated by %s"), a.registry.MustGet(res.Provider).Name)
			fmt.Println(res.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&regional, "regional", false, i18n.T("Force the regional (mainland China) provider chain"))
	cmd.Flags().BoolVar(&global, "global", false, i18n.T("Force the global provider chain"))
	cmd.Flags().StringVar(&policy, "policy", "", i18n.T("Locale policy: strict or majority (default from config)"))
	cmd.Flags().BoolVar(&asJSON, "json", false, i18n.T("Print the result as JSON"))
	registerPolicyCompletion(cmd)

	return cmd
}

// ---------------------------------------------------------------------------
// lookup
// ---------------------------------------------------------------------------

func newLookupCmd() *cobra.Command {
	var (
		regional bool
		global   bool
		policy   string
		style    string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "lookup <word>",
		Short: i18n.T("Translate a word and show its pronunciation"),
		Long: i18n.T(`Translate a word and look up its pronunciation at the same time.

The phonetic line is hidden when the dictionary returns something that
does not look like IPA.`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			st, err := resolveStyle(style, a.cfg)
			if err != nil {
				return err
			}
			isRegional, err := resolveRegional(regional, global, policy, a.cfg)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			word := strings.Join(args, " ")
			entry := a.orch.Lookup(ctx, translate.Request{Text: word, IsRegionalUser: isRegional}, st)

			if asJSON {
				return printJSON(entry)
			}

			fmt.Println(entry.Word)
			if entry.ShowPhonetic {
				fmt.Printf("  [%s]\n", entry.Phonetic)
			}
			if entry.Translation.Success {
				fmt.Printf("  %s\n", entry.Translation.Text)
			} else {
				logWarning(i18n.T("Translation failed"))
			}
			if entry.AudioURL != "" {
				fmt.Printf("  %s %s\n", i18n.T("audio:"), entry.AudioURL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&regional, "regional", false, i18n.T("Force the regional (mainland China) provider chain"))
	cmd.Flags().BoolVar(&global, "global", false, i18n.T("Force the global provider chain"))
	cmd.Flags().StringVar(&policy, "policy", "", i18n.T("Locale policy: strict or majority (default from config)"))
	cmd.Flags().StringVar(&style, "style", "", i18n.T("Phonetic style: dj or ipa (default from preferences)"))
	cmd.Flags().BoolVar(&asJSON, "json", false, i18n.T("Print the result as JSON"))
	registerPolicyCompletion(cmd)
	registerStyleCompletion(cmd)

	return cmd
}

// ---------------------------------------------------------------------------
// phonetic
// ---------------------------------------------------------------------------

func newPhoneticCmd() *cobra.Command {
	var (
		style string
		save  bool
	)

	cmd := &cobra.Command{
		Use:   "phonetic <ipa>",
		Short: i18n.T("Normalize an IPA transcription"),
		Long: i18n.T(`Rewrite an IPA transcription into the cleaned-up IPA or DJ notation.

Examples:
  quicktrans phonetic "/hɹæp ɡoʊ/"
  quicktrans phonetic --style dj "/ˌɪn.vɪˈteɪ.ʃn̩/"
  quicktrans phonetic --style dj --save     # remember dj as the default`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				if style == "" {
					return errors.New(i18n.T("--save needs --style"))
				}
				st, err := phonetic.ParseStyle(style)
				if err != nil {
					return err
				}
				if err := settings.SetPhoneticType(st.Alias()); err != nil {
					return err
				}
				logSuccess(i18n.T("Default phonetic style set to %s"), st.Alias())
				if len(args) == 0 {
					return nil
				}
			}
			if len(args) == 0 {
				return errors.New(i18n.T("missing IPA argument"))
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st, err := resolveStyle(style, cfg)
			if err != nil {
				return err
			}

			ipa := strings.Join(args, " ")
			if !phonetic.LooksLikeIPA(ipa) {
				logWarning(i18n.T("Input does not look like IPA"))
			}
			fmt.Println(phonetic.Normalize(ipa, st))
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "", i18n.T("Phonetic style: dj or ipa (default from preferences)"))
	cmd.Flags().BoolVar(&save, "save", false, i18n.T("Store --style as the default phonetic style"))
	registerStyleCompletion(cmd)

	return cmd
}

// ---------------------------------------------------------------------------
// classify
// ---------------------------------------------------------------------------

func newClassifyCmd() *cobra.Command {
	var (
		language string
		timezone string
		numeric  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: i18n.T("Show how the locale classifier sees this machine"),
		Long: i18n.T(`Show the language, timezone and numeric-locale signals and how each
policy classifies them. Flags override the detected signals.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			sig := locale.DetectSignals()
			if language != "" {
				sig.Language = language
			}
			if timezone != "" {
				sig.Timezone = timezone
			}
			if numeric != "" {
				sig.NumericLocale = numeric
			}

			report := classifyReport{
				Signals:     sig,
				LanguageTag: langmeta.Tag(sig.Language),
				Majority:    sig.Classify(locale.PolicyMajority),
				Strict:      sig.Classify(locale.PolicyStrict),
				Policy:      cfg.Policy(),
			}
			report.Regional = sig.Classify(report.Policy)

			if asJSON {
				return printJSON(report)
			}
			printClassifyReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", i18n.T("Language tag (default: detected)"))
	cmd.Flags().StringVar(&timezone, "timezone", "", i18n.T("IANA timezone (default: detected)"))
	cmd.Flags().StringVar(&numeric, "numeric-locale", "", i18n.T("Numeric locale (default: detected)"))
	cmd.Flags().BoolVar(&asJSON, "json", false, i18n.T("Print the result as JSON"))

	return cmd
}

type classifyReport struct {
	Signals     locale.Signals `json:"signals"`
	LanguageTag string         `json:"languageTag"`
	Majority    bool           `json:"majority"`
	Strict      bool           `json:"strict"`
	Policy      locale.Policy  `json:"policy"`
	Regional    bool           `json:"regional"`
}

func printClassifyReport(r classifyReport) {
	meta := langmeta.Resolve(r.Signals.Language)
	fmt.Printf("  %-16s %s\n", i18n.T("Direction:"), directionLabel())
	fmt.Printf("  %-16s %s %s (%s)\n", i18n.T("Language:"), meta.Flag, meta.Name, orDash(r.LanguageTag))
	fmt.Printf("  %-16s %s\n", i18n.T("Timezone:"), orDash(r.Signals.Timezone))
	fmt.Printf("  %-16s %s\n", i18n.T("Numeric locale:"), orDash(r.Signals.NumericLocale))
	fmt.Println()
	fmt.Printf("  %-16s %s\n", "majority:", yesNo(r.Majority))
	fmt.Printf("  %-16s %s\n", "strict:", yesNo(r.Strict))
	fmt.Println()
	if r.Regional {
		logInfo(i18n.T("Policy %s: regional provider chain"), r.Policy)
	} else {
		logInfo(i18n.T("Policy %s: global provider chain"), r.Policy)
	}
}

// directionLabel renders the fixed translation direction, e.g.
// "🇺🇸 English → 🇨🇳 中文 (en → zh-Hans)".
func directionLabel() string {
	src := langmeta.Resolve(langmeta.Source.String())
	dst := langmeta.Resolve(langmeta.Target.String())
	return fmt.Sprintf("%s %s → %s %s (%s → %s)",
		src.Flag, src.Name, dst.Flag, dst.Name, langmeta.Source, langmeta.Target)
}

func yesNo(b bool) string {
	if b {
		return colorGreen + i18n.T("regional") + colorReset
	}
	return colorYellow + i18n.T("global") + colorReset
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ---------------------------------------------------------------------------
// prefs
// ---------------------------------------------------------------------------

func newPrefsCmd() *cobra.Command {
	var (
		reset  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: i18n.T("Show or reset stored preferences"),
		Long: i18n.T(`Show where preferences are stored and what they contain.

Preferences hold the last translated selection and the default phonetic
style. --reset deletes the file.

Examples:
  quicktrans prefs
  quicktrans prefs --reset`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess(i18n.T("Preferences removed: %s"), settings.FilePath())
				return nil
			}

			report, err := loadPrefsReport()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(report)
			}
			fmt.Printf("  %-16s %s\n", i18n.T("Data dir:"), report.DataDir)
			fmt.Printf("  %-16s %s\n", i18n.T("File:"), report.File)
			fmt.Printf("  %-16s %s\n", i18n.T("Selection:"), orDash(report.SelectedText))
			fmt.Printf("  %-16s %s\n", i18n.T("Phonetic:"), report.PhoneticType)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, i18n.T("Delete the preferences file"))
	cmd.Flags().BoolVar(&asJSON, "json", false, i18n.T("Print the result as JSON"))

	return cmd
}

type prefsReport struct {
	DataDir      string `json:"dataDir"`
	File         string `json:"file"`
	SelectedText string `json:"selectedText"`
	PhoneticType string `json:"phoneticType"`
}

func loadPrefsReport() (prefsReport, error) {
	dir, err := settings.DataDir()
	if err != nil {
		return prefsReport{}, err
	}
	p := settings.Load()
	return prefsReport{
		DataDir:      dir,
		File:         settings.FilePath(),
		SelectedText: p.SelectedText,
		PhoneticType: p.EffectivePhoneticType(),
	}, nil
}

// ---------------------------------------------------------------------------
// bench
// ---------------------------------------------------------------------------

func newBenchCmd() *cobra.Command {
	var (
		runs    int
		timeout time.Duration
		only    string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: i18n.T("Measure provider success rate and latency"),
		Long: i18n.T(`Send a fixed set of sample texts to each provider, one request at a
time, and report success rate and latency.

Examples:
  quicktrans bench
  quicktrans bench --runs 2 --only baidu-proxy,mymemory
  BAIDU_PROXY_ENDPOINT=https://my-proxy.example/api/translate quicktrans bench --json`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			opts := cfg.FetchOptions()
			opts.Timeout = timeout
			reg := provider.New(cfg.Endpoints())
			f := fetch.New(opts)

			ctx, cancel := signalContext()
			defer cancel()

			var onSample func(bench.Sample)
			if !asJSON {
				onSample = func(s bench.Sample) {
					if s.Success {
						logSuccess("%-12s %-22q %5dms  %s", s.Provider, s.Text, s.Elapsed.Milliseconds(), s.Preview)
					} else if verbose {
						logWarning("%-12s %-22q %5dms  %s (%d)", s.Provider, s.Text, s.Elapsed.Milliseconds(), s.Failure, s.Status)
					}
				}
			}

			summaries, err := bench.Run(ctx, reg, f, bench.Options{Runs: runs, Providers: splitList(only)}, onSample)
			if asJSON {
				if jerr := printJSON(summaries); jerr != nil {
					return jerr
				}
				return err
			}
			printBenchTable(summaries)
			return err
		},
	}

	cmd.Flags().IntVar(&runs, "runs", bench.DefaultRuns, i18n.T("Runs per sample text"))
	cmd.Flags().DurationVar(&timeout, "timeout", 8*time.Second, i18n.T("Request timeout"))
	cmd.Flags().StringVar(&only, "only", "", i18n.T("Providers to benchmark (comma-separated)"))
	cmd.Flags().BoolVar(&asJSON, "json", false, i18n.T("Print the summary as JSON"))

	_ = cmd.RegisterFlagCompletionFunc("only", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return provider.New(provider.Endpoints{}).Keys(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func printBenchTable(summaries []bench.Summary) {
	fmt.Println()
	fmt.Printf("  %-24s %-22s %7s %7s %7s %7s\n",
		i18n.T("Provider"), i18n.T("Success"), "p50", "p95", "min", "max")
	for _, s := range summaries {
		fmt.Printf("  %-24s %s %7s %7s %7s %7s\n",
			s.Name,
			progressBar(int(s.SuccessRate+0.5), 10),
			formatMs(s.P50Ms), formatMs(s.P95Ms), formatMs(s.FastestMs), formatMs(s.SlowestMs))
		reasons := make([]string, 0, len(s.Failures))
		for reason := range s.Failures {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Printf("    %s %s: %s\n", colorYellow+"!"+colorReset, reason, failureCount(s.Failures[reason]))
		}
	}
	fmt.Println()
}

func failureCount(n int) string {
	return fmt.Sprintf(i18n.N("%d failed request", "%d failed requests", n), n)
}

// progressBar renders a colored bar followed by the percentage.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}

	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset +
		fmt.Sprintf(" %3d%%", percent)
}

func formatMs(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return fmt.Sprintf("%dms", ms)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: i18n.T("Run the local HTTP host for the browser extension"),
		Long: i18n.T(`Run the local HTTP host the browser extension calls.

The extension opens a scope per tab (POST /v1/scopes) and closes it when
the tab goes away (DELETE /v1/scopes/{scope}); providers that reported
themselves disabled are skipped only within their scope.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			if listen == "" {
				listen = a.cfg.Server.Listen
			}

			srv := server.New(a.orch, a.memory,
				server.WithLogger(a.log.Named("server")),
				server.WithPolicy(a.cfg.Policy()),
				server.WithStyle(a.cfg.Style()),
				server.WithGatherer(a.promReg),
			)

			ctx, cancel := signalContext()
			defer cancel()

			logInfo(i18n.T("Failure memory: providers stay disabled for %s per scope"), a.memory.TTL())
			logInfo(i18n.T("Listening on http://%s"), listen)
			if err := srv.Run(ctx, listen); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			logSuccess(i18n.T("Server stopped"))
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", i18n.T("Listen address (default from config)"))

	return cmd
}

// ---------------------------------------------------------------------------
// Completions
// ---------------------------------------------------------------------------

func registerPolicyCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("policy", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"strict\tChinese language and a mainland timezone",
			"majority\tTwo of language, timezone and numeric locale",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

func registerStyleCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("style", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"ipa\tCleaned-up IPA",
			"dj\tDJ-style teaching notation",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
