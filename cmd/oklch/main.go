package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jsvensson/oklchstudio/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var version = "dev" // Injected at build time via ldflags

var log = commonlog.GetLogger("oklch")

// viperKey is the flag annotation naming the config key a flag overrides.
const viperKey = "viper-key"

// app holds the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "oklch",
		Short:         "Convert, gamut-map and render OKLCH colors, and build design tokens from HCL",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./oklch.yaml)")
	root.PersistentFlags().IntP("verbose", "v", 0, "log verbosity (0 is quiet)")
	bindFlag(root.PersistentFlags(), "verbose", config.KeyLogVerbosity)

	root.AddCommand(
		a.convertCmd(),
		a.gamutCmd(),
		a.pickCmd(),
		a.planeCmd(),
		a.stripCmd(),
		a.generateCmd(),
		a.cssCmd(),
		a.fmtCmd(),
		a.serveCmd(),
		a.warmCmd(),
		versionCmd(),
	)
	return root
}

// bindFlag marks flag name as the command-line override for a config key.
// The binding is applied to the command that actually runs.
func bindFlag(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, viperKey, []string{key}); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func (a *app) init(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[viperKey]; len(keys) == 1 && bindErr == nil {
			bindErr = a.v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("binding flags: %w", bindErr)
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("oklch")
	}

	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(config.EnvKeyReplacer)
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	commonlog.Configure(cfg.Log.Verbosity, nil)
	if used := a.v.ConfigFileUsed(); used != "" {
		log.Debugf("using config file %s", used)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
