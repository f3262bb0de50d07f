package publish

import "github.com/moatwatch/moatwatch/pkg/logger"

// Option applies a configuration option to the Publisher.
type Option func(*Publisher)

// WithRunner sets the command runner, used to stub git in tests.
func WithRunner(r Runner) Option {
	return func(p *Publisher) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithRemote sets the git remote name.
func WithRemote(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.remoteName = name
		}
	}
}

// WithBranches sets the site and data branch names.
func WithBranches(site, data string) Option {
	return func(p *Publisher) {
		if site != "" {
			p.siteBranch = site
		}
		if data != "" {
			p.dataBranch = data
		}
	}
}

// WithAuthor sets the commit author identity.
func WithAuthor(name, email string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.authorName = name
		}
		if email != "" {
			p.authorEmail = email
		}
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}
