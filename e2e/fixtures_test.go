//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FixturePR describes one pull request written to the fixture file
type FixturePR struct {
	Number int
	Title  string
	Author string
	State  string
	Body   string
	Labels []string
	Diff   string
}

// defaultFixture is the pull request set most tests start from
var defaultFixture = []FixturePR{
	{Number: 11, Title: "Fix flaky login test", Author: "mona", State: "open", Body: "Retries the **login** request.", Labels: []string{"tests"},
		Diff: "diff --git a/login_test.go b/login_test.go\n+\tretry(3)\n"},
	{Number: 12, Title: "Add dark mode", Author: "hubot", State: "open", Body: "Adds a theme toggle."},
	{Number: 13, Title: "Bump lipgloss", Author: "dependabot", State: "merged"},
}

// CreateTestWorkspace creates a temporary directory used as $HOME and
// $XDG_CONFIG_HOME for the app
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// WriteFixture writes prs to pulls.toml in the workspace and returns its path
func (tf *TUITestFramework) WriteFixture(prs []FixturePR) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}

	var b strings.Builder
	for _, pr := range prs {
		b.WriteString("[[pull_requests]]\n")
		fmt.Fprintf(&b, "number = %d\n", pr.Number)
		fmt.Fprintf(&b, "title = %q\n", pr.Title)
		fmt.Fprintf(&b, "author = %q\n", pr.Author)
		fmt.Fprintf(&b, "state = %q\n", pr.State)
		if pr.Body != "" {
			fmt.Fprintf(&b, "body = %q\n", pr.Body)
		}
		if len(pr.Labels) > 0 {
			quoted := make([]string, len(pr.Labels))
			for i, l := range pr.Labels {
				quoted[i] = fmt.Sprintf("%q", l)
			}
			fmt.Fprintf(&b, "labels = [%s]\n", strings.Join(quoted, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("[diffs]\n")
	for _, pr := range prs {
		if pr.Diff != "" {
			fmt.Fprintf(&b, "%d = %q\n", pr.Number, pr.Diff)
		}
	}

	path := filepath.Join(tf.workspace, "pulls.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ConfigPath returns where the app saves its config inside the workspace
func (tf *TUITestFramework) ConfigPath() string {
	return filepath.Join(tf.workspace, "prgrip", "config.toml")
}

// StartWithFixture creates a workspace, writes prs and launches the app on it
func (tf *TUITestFramework) StartWithFixture(prs []FixturePR, args ...string) (string, error) {
	if _, err := tf.CreateTestWorkspace(); err != nil {
		return "", err
	}
	path, err := tf.WriteFixture(prs)
	if err != nil {
		return "", err
	}
	return path, tf.StartApp(append([]string{"--file", path}, args...)...)
}
