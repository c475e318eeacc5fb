package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/linkslice/check-cmd-wrapper/pkg/checkcmd"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Build contains the git commit id, set from main via ldflags.
var Build string

// Flags are all command line options of the plugin.
type Flags struct {
	Command        string
	Timeout        int64
	TimeWarn       string
	TimeCrit       string
	Labels         []string
	ConfigFile     string
	IgnoreExitCode bool
	NoShell        bool
	ShortName      string
	Separator      string
	Verbose        int
	Version        bool
}

var flags = &Flags{}

var rootCmd = &cobra.Command{
	Use:   "check_cmd_wrapper [flags]",
	Short: "Monitoring plugin wrapping arbitrary commands with label based output checks.",
	Long: `check_cmd_wrapper runs any external command and turns its output into a
Naemon/Nagios compatible check result. Label rules extract values,
count occurrences or simply require (or forbid) patterns in the output.

Examples:

# extract the http code and alert on server errors
check_cmd_wrapper -C 'curl -s -w "http_code:%{http_code}" https://example.com' \
    -l 'name=http_code;pattern=http_code:(\d+);mode=parse' \
    -l 'name=http_error;pattern=http_code:([45]\d\d);mode=nomatch;severity=2;message=HTTP error code detected'

# count failed units and warn above 0
check_cmd_wrapper -C 'systemctl list-units --failed' \
    -l 'name=failed;pattern=(?:^.*failed.*$);mode=count;warn=0:0'
`,
	Run: func(_ *cobra.Command, _ []string) {
		if flags.Version {
			fmt.Fprintf(os.Stdout, "%s v%s (Build: %s)\n", checkcmd.NAME, checkcmd.VERSION, Build)
			os.Exit(checkcmd.SeverityOK.ExitCode())
		}

		switch flags.Verbose {
		case 0:
			checkcmd.SetLogLevel("error")
		case 1:
			checkcmd.SetLogLevel("debug")
		default:
			checkcmd.SetLogLevel("trace")
		}

		opts, specs, err := buildOptions(flags)
		if err != nil {
			shortName := flags.ShortName
			if shortName == "" {
				shortName = checkcmd.DefaultShortName
			}
			fmt.Fprintf(os.Stdout, "%s %s - %s\n", shortName, checkcmd.SeverityUnknown.String(), err.Error())
			os.Exit(checkcmd.SeverityUnknown.ExitCode())
		}

		runner := checkcmd.NewRunner(opts, specs)
		report := runner.Run(context.Background())

		fmt.Fprintln(os.Stdout, report.PluginOutput(opts.ShortName))
		os.Exit(report.State.ExitCode())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.Command, "command", "C", "", "the command to execute (handed to the system shell unless --no-shell is set)")
	rootCmd.PersistentFlags().Int64VarP(&flags.Timeout, "timeout", "t", checkcmd.DefaultTimeout, "command timeout in seconds, the check returns UNKNOWN when it expires")
	rootCmd.PersistentFlags().StringVarP(&flags.TimeWarn, "time-warn", "w", "", "warning threshold for the execution time in seconds ('0' means unset)")
	rootCmd.PersistentFlags().StringVarP(&flags.TimeCrit, "time-crit", "c", "", "critical threshold for the execution time in seconds ('0' means unset)")
	rootCmd.PersistentFlags().StringArrayVarP(&flags.Labels, "label", "l", []string{}, "label declaration: name=...;pattern=...;mode=match|nomatch|parse|count[;severity=0-3][;message=...][;warn=...][;crit=...] (multiple)")
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "f", "", "path to a yaml rules file, flags override its values")
	rootCmd.PersistentFlags().BoolVarP(&flags.IgnoreExitCode, "ignore-exit-code", "", false, "do not warn when the command exits non-zero")
	rootCmd.PersistentFlags().BoolVarP(&flags.NoShell, "no-shell", "", false, "execute the command directly instead of via the system shell")
	rootCmd.PersistentFlags().StringVarP(&flags.ShortName, "shortname", "s", "", fmt.Sprintf("prefix of the plugin output (default %q)", checkcmd.DefaultShortName))
	rootCmd.PersistentFlags().StringVarP(&flags.Separator, "separator", "", "", fmt.Sprintf("separator between status messages (default %q)", checkcmd.DefaultSeparator))
	rootCmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "increase loglevel, -v means debug, -vv means trace (logs go to stderr)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Version, "version", "V", false, "print version and exit")

	rootCmd.DisableAutoGenTag = true
	rootCmd.DisableSuggestions = true

	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.Flags().SortFlags = false
}

func Execute() error {
	sanitizeOSArgs()

	return rootCmd.Execute()
}

// sanitizeOSArgs turns single dash long options into double dash ones,
// monitoring configs traditionally use -command style flags.
func sanitizeOSArgs() {
	replace := map[string]string{}
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name != "" {
			replace["-"+f.Name] = "--" + f.Name
		}
	})
	for i, a := range os.Args {
		if i == 0 {
			continue
		}
		if r, ok := replace[a]; ok {
			os.Args[i] = r
		}
		for n, r := range replace {
			if strings.HasPrefix(a, n+"=") {
				os.Args[i] = r + "=" + strings.TrimPrefix(os.Args[i], n+"=")
			}
		}
	}
}

// buildOptions merges the optional rules file with the command line flags.
func buildOptions(flags *Flags) (*checkcmd.Options, []*checkcmd.RuleSpec, error) {
	conf := &checkcmd.Config{}
	if flags.ConfigFile != "" {
		var err error
		conf, err = checkcmd.ReadConfig(flags.ConfigFile)
		if err != nil {
			return nil, nil, err
		}
	}

	opts := &checkcmd.Options{
		Command:        conf.Command,
		Timeout:        conf.Timeout,
		TimeWarn:       conf.TimeWarn,
		TimeCrit:       conf.TimeCrit,
		IgnoreExitCode: conf.IgnoreExitCode,
		NoShell:        flags.NoShell,
		ShortName:      conf.ShortName,
		Separator:      conf.Separator,
	}

	if flags.Command != "" {
		opts.Command = flags.Command
	}
	if flags.Timeout != checkcmd.DefaultTimeout {
		opts.Timeout = flags.Timeout
	}
	if flags.TimeWarn != "" {
		opts.TimeWarn = flags.TimeWarn
	}
	if flags.TimeCrit != "" {
		opts.TimeCrit = flags.TimeCrit
	}
	if flags.IgnoreExitCode {
		opts.IgnoreExitCode = true
	}
	if flags.ShortName != "" {
		opts.ShortName = flags.ShortName
	}
	if flags.Separator != "" {
		opts.Separator = flags.Separator
	}

	specs := conf.Labels
	for _, decl := range flags.Labels {
		spec, err := checkcmd.ParseLabelSpec(decl)
		if err != nil {
			return nil, nil, err
		}
		specs = append(specs, spec)
	}

	return opts, specs, nil
}
