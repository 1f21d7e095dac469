package commands

import (
	"context"
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/newsletter/internal/config"
	"git.home.luguber.info/inful/newsletter/internal/daemon"
	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/metrics"
	"git.home.luguber.info/inful/newsletter/internal/notify"
	"git.home.luguber.info/inful/newsletter/internal/pipeline"
	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/providers/envsecret"
	"git.home.luguber.info/inful/newsletter/internal/providers/local"
)

// runner is a pipeline together with the notifier it owns.
type runner struct {
	*pipeline.Pipeline
	notifier notify.Notifier
}

// Close releases the notifier connection.
func (r *runner) Close() error { return r.notifier.Close() }

// resolveSecrets reads every required secret before any provider exists, so
// a missing credential aborts the run without an external call.
func resolveSecrets(ctx context.Context, cfg *config.Config) (map[string]string, error) {
	if len(cfg.Secrets.Required) == 0 {
		return map[string]string{}, nil
	}
	sp, err := envsecret.New(cfg.Secrets.EnvPrefix, config.EnvFiles...)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(cfg.Secrets.Required))
	var errs []error
	for _, name := range cfg.Secrets.Required {
		v, err := sp.Read(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[name] = v
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return values, nil
}

// buildProviders constructs the provider set for cfg.Providers.Kind, handing
// each backend the secrets resolved for it. The local backend reads fixture
// files and takes no credentials.
func buildProviders(cfg *config.Config, secrets map[string]string) (providers.Set, error) {
	switch cfg.Providers.Kind {
	case config.ProviderLocal:
		if len(secrets) > 0 {
			slog.Debug("Local providers take no credentials; resolved secrets unused",
				logfields.Provider(string(config.ProviderLocal)), slog.Int("secrets", len(secrets)))
		}
		fx, err := local.LoadFixtures(cfg.Providers.Fixtures)
		if err != nil {
			return providers.Set{}, nerrors.Wrap(err, nerrors.CategoryConfig, nerrors.SeverityFatal, "failed to load provider fixtures").
				WithContext("path", cfg.Providers.Fixtures)
		}
		return local.New(fx, cfg.Providers.TemplatesDir, cfg.Providers.PublishDir).Set(), nil
	default:
		return providers.Set{}, nerrors.ConfigInvalid("providers.kind", "unsupported provider kind "+string(cfg.Providers.Kind))
	}
}

// buildNotifier connects to NATS when configured. A broker that is down only
// costs the run events, never the run.
func buildNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Notify.NATSURL == "" {
		return notify.Noop{}
	}
	n, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject, cfg.Notify.JetStream)
	if err != nil {
		slog.Warn("Run events disabled; NATS unavailable", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		return notify.Noop{}
	}
	return n
}

// newRunner wires a pipeline for cfg.
func newRunner(ctx context.Context, cfg *config.Config, rec metrics.Recorder) (*runner, error) {
	secrets, err := resolveSecrets(ctx, cfg)
	if err != nil {
		return nil, err
	}
	set, err := buildProviders(cfg, secrets)
	if err != nil {
		return nil, err
	}
	n := buildNotifier(cfg)
	p, err := pipeline.New(cfg, set,
		pipeline.WithRecorder(rec),
		pipeline.WithNotifier(n),
		pipeline.WithLogger(slog.Default()))
	if err != nil {
		_ = n.Close()
		return nil, err
	}
	return &runner{Pipeline: p, notifier: n}, nil
}

// daemonFactory adapts newRunner to the daemon's Factory.
func daemonFactory(ctx context.Context) daemon.Factory {
	return func(cfg *config.Config, rec metrics.Recorder) (daemon.Runner, error) {
		return newRunner(ctx, cfg, rec)
	}
}
