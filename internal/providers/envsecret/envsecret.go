// Package envsecret resolves secrets from the process environment, optionally
// seeded from dotenv files.
package envsecret

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
)

// Provider looks secrets up as <prefix><NAME> environment variables.
type Provider struct {
	prefix string
	lookup func(string) (string, bool)
}

// New returns a provider reading variables with prefix. Each existing file in
// envFiles is loaded first; variables already set are never overridden.
func New(prefix string, envFiles ...string) (*Provider, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, nerrors.Wrap(err, nerrors.CategoryConfig, nerrors.SeverityFatal, "failed to load env file").
				WithContext("path", f)
		}
	}
	return &Provider{prefix: prefix, lookup: os.LookupEnv}, nil
}

// FromMap returns a provider over a fixed set of variables.
func FromMap(prefix string, vars map[string]string) *Provider {
	return &Provider{prefix: prefix, lookup: func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}}
}

// Read returns the secret called name. Missing or empty secrets are
// configuration errors.
func (p *Provider) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := p.Key(name)
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return "", nerrors.ConfigRequired("secret "+name).WithContext("env", key)
	}
	return v, nil
}

// Key maps a secret name onto its environment variable.
func (p *Provider) Key(name string) string {
	var b strings.Builder
	b.WriteString(p.prefix)
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
