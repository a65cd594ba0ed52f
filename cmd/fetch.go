package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/hkdywg/toolfetch/internal/config"
	"github.com/hkdywg/toolfetch/internal/extract"
	"github.com/hkdywg/toolfetch/internal/fetcher"
	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/toolchain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type downloadFunc func(ctx context.Context, name, rawURL string) error

// installRequest is one pass of lookup, download, extract and env file.
type installRequest struct {
	Arch       string
	Host       string
	ArchiveDir string
	Config     *config.Config
	Download   downloadFunc
	Manager    *output.Manager
}

func installToolchain(ctx context.Context, req installRequest) (toolchain.Toolchain, error) {
	cfg := req.Config
	mgr := req.Manager

	id := mgr.Register(fmt.Sprintf("Select toolchain for %s/%s", req.Arch, req.Host))
	selector, err := cfg.Selector()
	if err != nil {
		mgr.ReportError(id, err)
		return toolchain.Toolchain{}, err
	}
	tc, err := selector.Lookup(req.Arch, req.Host)
	if err != nil {
		mgr.ReportError(id, err)
		return toolchain.Toolchain{}, err
	}
	mgr.Complete(id, fmt.Sprintf("Selected %s", tc.URL()))

	url := tc.URL()
	if fetcher.IsDirectorySource(url) {
		id = mgr.Register("Clone toolchain")
		if err := req.Download(ctx, cfg.Toolchain.Dir, url); err != nil {
			mgr.ReportError(id, err)
			return tc, err
		}
		mgr.Complete(id, fmt.Sprintf("Cloned into %s", cfg.Toolchain.Dir))
	} else {
		archivePath := filepath.Join(req.ArchiveDir, tc.Archive)
		id = mgr.Register(fmt.Sprintf("Download %s", tc.Archive))
		if err := req.Download(ctx, archivePath, url); err != nil {
			mgr.ReportError(id, err)
			return tc, err
		}
		mgr.Complete(id, fmt.Sprintf("Downloaded %s", archivePath))

		id = mgr.Register(fmt.Sprintf("Extract into %s", cfg.Toolchain.Dir))
		err := extract.Extract(ctx, archivePath, cfg.Toolchain.Dir, extract.Options{Backend: cfg.Extract.Backend})
		if err != nil {
			mgr.ReportError(id, err)
			return tc, err
		}
		mgr.Complete(id, fmt.Sprintf("Extracted into %s", cfg.Toolchain.Dir))
	}

	id = mgr.Register("Write environment file")
	vars, err := toolchain.AbsEnvVars(tc, cfg.Toolchain.Dir)
	if err != nil {
		mgr.ReportError(id, err)
		return tc, err
	}
	if err := toolchain.WriteEnvFile(cfg.Toolchain.EnvFile, vars); err != nil {
		mgr.ReportError(id, err)
		return tc, err
	}
	mgr.Complete(id, fmt.Sprintf("Wrote %s", cfg.Toolchain.EnvFile))
	log.Info().Str("op", "cmd/fetch").Str("arch", tc.Arch).Str("host", tc.Host).Msg("Toolchain installed")
	return tc, nil
}

func newFetchCmd() *cobra.Command {
	var dir, envFile, backend, profile, region string
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "fetch [ARCH] [--dir DIR] [--env-file FILE]",
		Short: "Download and install the toolchain for ARCH on this host",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			arch := appConfig.Toolchain.DefaultArch
			if len(args) > 0 {
				arch = args[0]
			}
			output.PrintHeader(fmt.Sprintf("Installing %s toolchain for %s", arch, runtime.GOOS))
			mgr := output.NewManager(cmd.OutOrStdout())
			_, err := installToolchain(cmd.Context(), installRequest{
				Arch:       arch,
				Host:       runtime.GOOS,
				ArchiveDir: ".",
				Config:     appConfig,
				Download:   newFetcher(appConfig).Download,
				Manager:    mgr,
			})
			mgr.ShowSummary()
			if err != nil {
				fail(err)
			}
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Toolchain install directory")
	cmd.Flags().StringVarP(&envFile, "env-file", "e", "", "Environment file to write")
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "Extraction backend (exec or native)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Read size per chunk in bytes")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile for s3:// sources")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for s3:// sources")
	return cmd
}
