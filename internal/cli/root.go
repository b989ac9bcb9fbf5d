package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmirzaei/mizan/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mizan",
	Short: "Mizan - Statutory reasoning over Persian civil-code cases",
	Long: `Mizan analyzes Persian-language case narratives against a corpus of
civil-code articles on usurpation (غصب).

It extracts the parties, claims and facts from a narrative, retrieves
the most relevant articles, reasons through their applicability step by
step, and synthesizes a structured draft verdict.

Mizan drafts, it does not judge. Every output is a starting point for a
human reader, never a decision.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mizan v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.mizan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in the .env file, config file and MIZAN_* variables
func initConfig() {
	// .env is optional; missing file is not an error
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.mizan")
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MIZAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the runtime configuration: defaults, then the
// config file, then environment, with the API key taken from the
// provider's conventional variable.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("provider.name"); v != "" {
		cfg.Provider.Name = v
	}
	if v := viper.GetString("provider.model"); v != "" {
		cfg.Provider.Model = v
	}
	if v := viper.GetString("provider.base_url"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := viper.GetDuration("provider.timeout"); v > 0 {
		cfg.Provider.Timeout = v
	}
	if viper.IsSet("provider.temperature") {
		cfg.Provider.Temperature = float32(viper.GetFloat64("provider.temperature"))
	}
	if v := viper.GetInt("provider.max_tokens"); v > 0 {
		cfg.Provider.MaxTokens = v
	}
	if v := viper.GetInt("provider.max_retries"); v > 0 {
		cfg.Provider.MaxRetries = v
	}
	if v := viper.GetFloat64("provider.rps"); v > 0 {
		cfg.Provider.RPS = v
	}
	if v := viper.GetString("provider.embedding_model"); v != "" {
		cfg.Provider.EmbeddingModel = v
	}
	if v := viper.GetInt("provider.embedding_dim"); v > 0 {
		cfg.Provider.EmbeddingDim = v
	}
	cfg.Provider.HTTPProxy = viper.GetString("provider.http_proxy")
	cfg.Provider.HTTPSProxy = viper.GetString("provider.https_proxy")

	if v := viper.GetString("corpus.path"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := viper.GetString("corpus.embeddings_path"); v != "" {
		cfg.Corpus.EmbeddingsPath = v
	}

	if v := viper.GetString("retrieval.backend"); v != "" {
		cfg.Retrieval.Backend = v
	}
	if v := viper.GetInt("retrieval.top_k"); v > 0 {
		cfg.Retrieval.TopK = v
	}
	if viper.IsSet("retrieval.threshold") {
		cfg.Retrieval.Threshold = viper.GetFloat64("retrieval.threshold")
	}
	if viper.IsSet("retrieval.hybrid") {
		cfg.Retrieval.Hybrid = viper.GetBool("retrieval.hybrid")
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.path"); v != "" {
		cfg.Cache.Path = v
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}

	cfg.Output.Verbose = verbose || viper.GetBool("output.verbose")
	cfg.Provider.APIKey = providerAPIKey(cfg.Provider.Name)

	return cfg
}

// providerAPIKey resolves the API key from the provider's conventional
// environment variable, with MIZAN_API_KEY as an override.
func providerAPIKey(provider string) string {
	if key := os.Getenv("MIZAN_API_KEY"); key != "" {
		return key
	}
	switch provider {
	case "gemini", "google":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// must be long enough for corpus load plus a full reasoning chain
const defaultRunTimeout = 10 * time.Minute
