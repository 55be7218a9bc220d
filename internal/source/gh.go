package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"prgrip/internal/domain"
	"prgrip/internal/log"
)

const ghFields = "number,title,author,state,isDraft,url,headRefName,baseRefName,labels,body,createdAt,updatedAt,additions,deletions,comments"

// Runner executes a command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// GHSource lists pull requests with the GitHub CLI
type GHSource struct {
	bin string
	dir string
	run Runner
}

// NewGHSource creates a source that runs gh in dir. The binary can be
// overridden with PRGRIP_GH_BIN.
func NewGHSource(dir string) *GHSource {
	bin := os.Getenv("PRGRIP_GH_BIN")
	if bin == "" {
		bin = "gh"
	}
	s := &GHSource{bin: bin, dir: dir}
	s.run = s.runCommand
	return s
}

// WithRunner replaces command execution, for tests
func (s *GHSource) WithRunner(r Runner) *GHSource {
	s.run = r
	return s
}

// Available reports whether the gh binary can be found
func (s *GHSource) Available() bool {
	_, err := exec.LookPath(s.bin)
	return err == nil
}

func (s *GHSource) List(ctx context.Context, q domain.Query) ([]domain.PullRequest, error) {
	args := []string{"pr", "list", "--json", ghFields}
	if q.Repo != "" {
		args = append(args, "--repo", q.Repo)
	}
	state := q.State
	if state == "" {
		state = domain.StateOpen
	}
	args = append(args, "--state", string(state))
	if q.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		args = append(args, "--search", q.Search)
	}

	start := time.Now()
	out, err := s.run(ctx, s.bin, args...)
	if err != nil {
		return nil, fmt.Errorf("gh pr list: %w", err)
	}
	log.Debug(log.CatSource, "gh pr list", "repo", q.Repo, "state", state, "duration", time.Since(start))

	prs, err := decodeGHList(out)
	if err != nil {
		return nil, err
	}
	return prs, nil
}

func (s *GHSource) Diff(ctx context.Context, repo string, number int) (string, error) {
	args := []string{"pr", "diff", strconv.Itoa(number), "--color", "always"}
	if repo != "" {
		args = append(args, "--repo", repo)
	}
	out, err := s.run(ctx, s.bin, args...)
	if err != nil {
		return "", fmt.Errorf("gh pr diff %d: %w", number, err)
	}
	return string(out), nil
}

func (s *GHSource) runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = s.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// ghPullRequest mirrors the JSON emitted by `gh pr list --json`
type ghPullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
	State       string    `json:"state"`
	IsDraft     bool      `json:"isDraft"`
	URL         string    `json:"url"`
	HeadRefName string    `json:"headRefName"`
	BaseRefName string    `json:"baseRefName"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Additions   int       `json:"additions"`
	Deletions   int       `json:"deletions"`
	Labels      []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Comments []json.RawMessage `json:"comments"`
}

func decodeGHList(data []byte) ([]domain.PullRequest, error) {
	var raw []ghPullRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode gh output: %w", err)
	}

	prs := make([]domain.PullRequest, 0, len(raw))
	for _, r := range raw {
		pr := domain.PullRequest{
			Number:    r.Number,
			Title:     r.Title,
			Author:    r.Author.Login,
			State:     domain.ParseState(r.State),
			Draft:     r.IsDraft,
			URL:       r.URL,
			HeadRef:   r.HeadRefName,
			BaseRef:   r.BaseRefName,
			Body:      r.Body,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Additions: r.Additions,
			Deletions: r.Deletions,
			Comments:  len(r.Comments),
		}
		for _, l := range r.Labels {
			pr.Labels = append(pr.Labels, l.Name)
		}
		prs = append(prs, pr)
	}
	return prs, nil
}
