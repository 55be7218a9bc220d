package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"

	"prgrip/internal/log"
	"prgrip/internal/source"
)

const diffTimeout = 60 * time.Second

// ovPager runs the ov pager in-process on content. It satisfies
// tea.ExecCommand so bubbletea releases and restores the terminal around it.
type ovPager struct {
	content string
}

func (p *ovPager) SetStdin(io.Reader)  {}
func (p *ovPager) SetStdout(io.Writer) {}
func (p *ovPager) SetStderr(io.Writer) {}

func (p *ovPager) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(p.content))
	if err != nil {
		return fmt.Errorf("start pager: %w", err)
	}

	// Don't write the document back to the terminal on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// showInPager hands content to ov and reports back with pagerDoneMsg
func showInPager(content string) tea.Cmd {
	return tea.Exec(&ovPager{content: content}, func(err error) tea.Msg {
		return pagerDoneMsg{err: err}
	})
}

// fetchDiff loads the diff of a pull request off the UI goroutine
func fetchDiff(src source.Source, repo string, number int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), diffTimeout)
		defer cancel()
		content, err := src.Diff(ctx, repo, number)
		if err != nil {
			log.ErrorErr(log.CatSource, "failed to load diff", err, "number", number)
		}
		return diffMsg{number: number, content: content, err: err}
	}
}
