package fetcher

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/rs/zerolog/log"
)

// GitSource clones toolchains published as repositories, addressed as
// git+https://host/repo.git#ref. The output path is a directory.
type GitSource struct{}

type gitCloneProgress struct {
	out io.Writer
}

func (p *gitCloneProgress) Write(data []byte) (int, error) {
	message := strings.TrimSpace(string(data))
	if message != "" {
		fmt.Fprint(p.out, "\r"+message)
	}
	return len(data), nil
}

func (s *GitSource) ValidateJob(job *utils.FetchJob) error {
	cloneURL, ref, err := parseGitURL(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["cloneURL"] = cloneURL
	job.Metadata["ref"] = ref
	return nil
}

func (s *GitSource) Download(ctx context.Context, job *utils.FetchJob) error {
	cloneURL := job.Metadata["cloneURL"].(string)
	ref := job.Metadata["ref"].(string)

	progress := job.Progress
	if progress == nil {
		progress = io.Discard
	}
	cloneOptions := &git.CloneOptions{
		URL:          cloneURL,
		Depth:        1,
		SingleBranch: true,
		Progress:     &gitCloneProgress{out: progress},
		Auth:         gitAuth(cloneURL, job.HTTPClientConfig.Token),
	}
	if ref != "" {
		cloneOptions.ReferenceName = refName(ref)
	}

	log.Info().Str("op", "fetcher/git").Str("job", job.ID).Msgf("Cloning %s into %s", cloneURL, job.OutputPath)
	_, err := git.PlainCloneContext(ctx, job.OutputPath, false, cloneOptions)
	fmt.Fprintln(progress)
	if err != nil {
		return fmt.Errorf("error cloning %s: %w", cloneURL, err)
	}
	return nil
}

func parseGitURL(raw string) (string, string, error) {
	if !strings.HasPrefix(raw, "git+") {
		return "", "", fmt.Errorf("invalid git URL: %s", raw)
	}
	cloneURL, ref, _ := strings.Cut(strings.TrimPrefix(raw, "git+"), "#")
	if cloneURL == "" {
		return "", "", fmt.Errorf("invalid git URL: %s", raw)
	}
	return cloneURL, ref, nil
}

func refName(ref string) plumbing.ReferenceName {
	if strings.HasPrefix(ref, "refs/") {
		return plumbing.ReferenceName(ref)
	}
	return plumbing.NewBranchReferenceName(ref)
}

func gitAuth(cloneURL, token string) transport.AuthMethod {
	if token == "" || !strings.HasPrefix(cloneURL, "http") {
		return nil
	}
	return &githttp.BasicAuth{Username: "oauth2", Password: token}
}
