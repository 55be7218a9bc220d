package source

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"prgrip/internal/domain"
)

// fixture is the on-disk layout of a pull request file:
//
//	[[pull_requests]]
//	number = 12
//	title = "Fix the frobnicator"
//
//	[diffs]
//	12 = "diff --git ..."
type fixture struct {
	PullRequests []domain.PullRequest `toml:"pull_requests"`
	Diffs        map[string]string    `toml:"diffs"`
}

// FileSource serves pull requests from a TOML file. The file is re-read on
// every call so edits show up on the next refresh.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) List(ctx context.Context, q domain.Query) ([]domain.PullRequest, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter(f.PullRequests, q), nil
}

func (s *FileSource) Diff(ctx context.Context, _ string, number int) (string, error) {
	f, err := s.read()
	if err != nil {
		return "", err
	}
	diff, ok := f.Diffs[strconv.Itoa(number)]
	if !ok {
		return "", fmt.Errorf("diff for #%d: %w", number, ErrNotFound)
	}
	return diff, nil
}

func (s *FileSource) read() (*fixture, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read pull request file: %w", err)
	}
	var f fixture
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pull request file %s: %w", s.path, err)
	}
	for i := range f.PullRequests {
		f.PullRequests[i].State = domain.ParseState(string(f.PullRequests[i].State))
	}
	return &f, nil
}
