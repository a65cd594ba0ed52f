package cmd

import (
	"context"
	"errors"
	"fmt"
	u "net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hkdywg/toolfetch/internal/config"
	"github.com/hkdywg/toolfetch/internal/fetcher"
	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debug     bool
	timeout   time.Duration
	proxyURL  string
	userAgent string
	token     string
	headers   []string
	appConfig *config.Config
)

var ToolfetchVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "toolfetch",
	Short:   "toolfetch downloads and installs cross-compilation toolchains for CI",
	Version: ToolfetchVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.InitLogger(debug)
		log.Logger = log.With().Str("run", uuid.NewString()[:8]).Logger()
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			fail(err)
		}
		cfg.HTTP.Headers = mergeHeaders(cfg.HTTP.Headers, utils.ParseHeaderArgs(headers))
		splitProxyAuth(cfg)
		appConfig = cfg
		log.Debug().Str("op", "cmd/root").Str("backend", cfg.Extract.Backend).Msg("Configuration loaded")
	},
}

// Execute runs the command tree with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./toolfetch.yaml when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token sent with HTTP requests")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newPackCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newEnvCmd())
	rootCmd.AddCommand(newRunCmd())
}

// exitCode maps an operation error to the process exit status. A missing
// toolchain gets its own code so CI scripts can tell it apart.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, utils.ErrToolchainNotFound):
		return 2
	default:
		return 1
	}
}

func fail(err error) {
	fmt.Println()
	output.PrintError(err.Error())
	os.Exit(exitCode(err))
}

// mergeHeaders returns a new map; -H values win over configured ones.
func mergeHeaders(base, extra map[string]string) map[string]string {
	return lo.Assign(base, extra)
}

// splitProxyAuth moves credentials embedded in the proxy URL into the
// dedicated fields unless those are already set.
func splitProxyAuth(cfg *config.Config) {
	parsedProxy, err := u.Parse(cfg.HTTP.Proxy)
	if err != nil || parsedProxy.User == nil || cfg.HTTP.ProxyUsername != "" {
		return
	}
	cfg.HTTP.ProxyUsername = parsedProxy.User.Username()
	if password, set := parsedProxy.User.Password(); set {
		cfg.HTTP.ProxyPassword = password
	}
	parsedProxy.User = nil
	cfg.HTTP.Proxy = parsedProxy.String()
}

func newFetcher(cfg *config.Config) *fetcher.Fetcher {
	return fetcher.New(fetcher.Options{
		HTTP:           cfg.HTTPClientConfig(),
		ChunkSize:      cfg.Download.ChunkSize,
		ReportInterval: cfg.Download.ReportInterval,
		Progress:       os.Stdout,
		S3Profile:      cfg.S3.Profile,
		S3Region:       cfg.S3.Region,
	})
}
