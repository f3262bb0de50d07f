// Package publish pushes pipeline artifacts to the hosting repository.
//
// The site branch holds only the latest generated output and its history is
// discarded on every push. The data branch accumulates snapshot history with
// regular commits.
package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moatwatch/moatwatch/pkg/logger"
	"github.com/moatwatch/moatwatch/pkg/metrics"
)

// Publisher pushes the generated site and commits collected data.
type Publisher struct {
	runner      Runner
	repoDir     string
	outputDir   string
	dataDir     string
	remoteName  string
	siteBranch  string
	dataBranch  string
	authorName  string
	authorEmail string

	logger logger.Logger
}

// NewPublisher creates a publisher rooted at the repository directory.
func NewPublisher(repoDir, outputDir, dataDir string, opts ...Option) *Publisher {
	p := &Publisher{
		runner:      ExecRunner{},
		repoDir:     repoDir,
		outputDir:   outputDir,
		dataDir:     dataDir,
		remoteName:  "origin",
		siteBranch:  "gh-pages",
		dataBranch:  "main",
		authorName:  "moatwatch-bot",
		authorEmail: "bot@moatwatch.local",
		logger:      logger.Get().Named("publish"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishSite force-pushes the output directory to the site branch as a
// single fresh commit. Previous site history is discarded.
func (p *Publisher) PublishSite(ctx context.Context, asOf time.Time) error {
	start := time.Now()
	err := p.publishSite(ctx, asOf)
	metrics.RecordPublishDuration(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordPublish("site", "failure")
		metrics.RecordErrorByComponent("publish", "site_error")
		return err
	}
	metrics.RecordPublish("site", "success")
	return nil
}

func (p *Publisher) publishSite(ctx context.Context, asOf time.Time) error {
	remoteURL, err := p.runner.Run(ctx, p.repoDir, "git", "remote", "get-url", p.remoteName)
	if err != nil {
		return fmt.Errorf("%w: resolve remote %s: %w", ErrGit, p.remoteName, err)
	}
	remoteURL = strings.TrimSpace(remoteURL)

	// A fresh repository inside the output directory yields exactly one
	// commit, so the force push replaces the branch wholesale.
	steps := [][]string{
		{"init"},
		{"checkout", "-b", p.siteBranch},
		{"add", "-A"},
		{
			"-c", "user.name=" + p.authorName,
			"-c", "user.email=" + p.authorEmail,
			"commit", "-m", "Site build " + asOf.Format("2006-01-02 15:04"),
		},
		{"push", "--force", remoteURL, "HEAD:" + p.siteBranch},
	}
	for _, args := range steps {
		if _, err := p.runner.Run(ctx, p.outputDir, "git", args...); err != nil {
			return fmt.Errorf("%w: git %s: %w", ErrGit, args[len(args)-1], err)
		}
	}

	p.logger.Info(ctx, "site published",
		logger.String("branch", p.siteBranch),
	)
	return nil
}

// CommitData commits the data directory to the data branch and pushes. A run
// that produced no changes is not an error.
func (p *Publisher) CommitData(ctx context.Context, asOf time.Time) error {
	start := time.Now()
	err := p.commitData(ctx, asOf)
	metrics.RecordPublishDuration(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordPublish("data", "failure")
		metrics.RecordErrorByComponent("publish", "data_error")
		return err
	}
	metrics.RecordPublish("data", "success")
	return nil
}

func (p *Publisher) commitData(ctx context.Context, asOf time.Time) error {
	if _, err := p.runner.Run(ctx, p.repoDir, "git", "add", p.dataDir); err != nil {
		return fmt.Errorf("%w: git add: %w", ErrGit, err)
	}

	out, err := p.runner.Run(ctx, p.repoDir, "git",
		"-c", "user.name="+p.authorName,
		"-c", "user.email="+p.authorEmail,
		"commit", "-m", "Data update "+asOf.Format("2006-01-02"),
	)
	if err != nil {
		if isNoopCommit(out, err) {
			metrics.RecordNoopCommit()
			p.logger.Info(ctx, "no data changes to commit")
			return nil
		}
		return fmt.Errorf("%w: git commit: %w", ErrGit, err)
	}

	if _, err := p.runner.Run(ctx, p.repoDir, "git", "push", p.remoteName, "HEAD:"+p.dataBranch); err != nil {
		return fmt.Errorf("%w: git push: %w", ErrGit, err)
	}

	p.logger.Info(ctx, "data committed",
		logger.String("branch", p.dataBranch),
	)
	return nil
}

// isNoopCommit detects git's exit status when the index matches HEAD.
func isNoopCommit(out string, err error) bool {
	text := out + " " + err.Error()
	return strings.Contains(text, "nothing to commit") ||
		strings.Contains(text, "nothing added to commit") ||
		strings.Contains(text, "no changes added to commit")
}
