package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aladdin-tools/build-components/internal/logger"
	"github.com/aladdin-tools/build-components/pkg/component"
	"github.com/aladdin-tools/build-components/pkg/plan"
)

const (
	defaultLogLevel      = "info"
	defaultComponentsDir = "components"
	envPrefix            = "build_components"
	// tagHashEnv is set by the publishing pipeline to the hash of the commit being built.
	tagHashEnv = "HASH"
	dotEnvFile = ".env"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use: "build-components",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Short: "Build the container images of the components of a project",
	Long: `build-components builds one container image per component of a project

Components live in subdirectories of the components directory. A component declares
its language, base image and dependencies in a component.yaml file, or ships its own
Dockerfile. Components are built in dependency order.

Run build-components --help for more information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	// Set logger level from flags as early as possible, then load config, then finalize from Viper
	cobra.OnInitialize(preInitLogLevelFromFlags, initConfig, initLogLevel)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .build-components.yaml in $HOME/.config or the current directory)")
	rootCmd.PersistentFlags().StringP("log-level", "l", defaultLogLevel,
		`Log level. Can be any standard log-level ("info", "debug", etc...)`)
	rootCmd.PersistentFlags().String("components-dir", defaultComponentsDir,
		"Path to the directory containing one subdirectory per component.")
	rootCmd.PersistentFlags().String("manifest", component.DefaultManifestPath,
		"Path to the project manifest, which holds the project name.")
	rootCmd.PersistentFlags().String("tag-hash", plan.LocalTagHash,
		fmt.Sprintf(`Hash used to tag images, defaults to the %s environment variable.
The %q hash marks a local development build: images get sudo and an editor image is built alongside.`,
			tagHashEnv, plan.LocalTagHash))

	bindPFlagsSnakeCase(rootCmd.PersistentFlags())

	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(buildCommand())
	rootCmd.AddCommand(listCommand())
	rootCmd.AddCommand(graphCommand())
	rootCmd.AddCommand(hashCommand())
	rootCmd.AddCommand(docgenCommand())
}

func initConfig() {
	workingDir, err := os.Getwd()
	cobra.CheckErr(err)

	loadDotEnv(filepath.Join(workingDir, dotEnvFile))

	viper.SetConfigType("yaml")

	if cfgFile != "" {
		// Use config file from the flag.
		setConfigFile(cfgFile)
	} else if val := os.Getenv("BUILD_COMPONENTS_CONFIG"); val != "" {
		setConfigFile(val)
	} else {
		homeDir, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(filepath.Join(homeDir, ".config"))
		viper.AddConfigPath(workingDir)

		// Search config file with name ".build-components.yaml" or ".build-components.yml".
		viper.SetConfigName(".build-components")
	}

	defaults := plan.NewDefaults()
	viper.SetDefault("default_language_version", defaults.LanguageVersion)
	viper.SetDefault("poetry_version", defaults.PoetryVersion)

	// Env vars starting with the BUILD_COMPONENTS_ prefix can override any configuration.
	// e.g. BUILD_COMPONENTS_LOG_LEVEL, BUILD_COMPONENTS_POETRY_VERSION, etc...
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindEnv("tag_hash", "BUILD_COMPONENTS_TAG_HASH", tagHashEnv))

	err = viper.ReadInConfig()
	if err != nil {
		// Non-blocking, the config file is optional.
		logger.Debugf("%s", err)
	} else {
		logger.Infof("Using config file: %s", viper.ConfigFileUsed())
	}
}

// loadDotEnv loads the variables of the .env file that are not already set.
func loadDotEnv(path string) {
	err := godotenv.Load(path)
	switch {
	case err == nil:
		logger.Debugf("Loaded environment from %s", path)
	case errors.Is(err, os.ErrNotExist):
	default:
		logger.Warnf("could not load %s: %v", path, err)
	}
}

func initLogLevel() {
	logger.SetLevel(viper.GetString("log_level"))
}

// preInitLogLevelFromFlags sets the log level from Cobra flags or env before config/env are loaded by Viper,
// so that early logs respect user-provided preference.
func preInitLogLevelFromFlags() {
	flag := rootCmd.PersistentFlags().Lookup("log-level")
	if flag != nil && flag.Changed {
		logger.SetLevel(flag.Value.String())
		return
	}

	if val, ok := os.LookupEnv("BUILD_COMPONENTS_LOG_LEVEL"); ok && val != "" {
		logger.SetLevel(val)
	}
}

func setConfigFile(name string) {
	_, err := os.Stat(name)
	if err != nil {
		cobra.CheckErr(fmt.Errorf("config file %q not found", name))
	}

	viper.SetConfigFile(name)
}

// hydrateOptsFromViper copies all the viper values into our config struct.
// The mapping between viper identifiers and struct field names
// is ensured by `mapstructure` struct tags.
func hydrateOptsFromViper(opts any) {
	_ = viper.Unmarshal(opts)
}

// bindPFlagsSnakeCase binds the flags with viper values. The identifier of the viper value
// is the name of the flag with dashes replaced by underscores, so that values coming from
// config files (my_config: "value") and flags (--my-config=value) end up in the same place.
func bindPFlagsSnakeCase(flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		_ = viper.BindPFlag(strings.ReplaceAll(flag.Name, "-", "_"), flag)
	})
}

// resolvePath returns path relative to dir, unless it is already absolute.
func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}
