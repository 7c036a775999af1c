package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/myrtlewealth/blueprint/internal/config"
	"github.com/myrtlewealth/blueprint/internal/document"
	"github.com/myrtlewealth/blueprint/internal/scorer"
	"github.com/myrtlewealth/blueprint/internal/store"
	"github.com/myrtlewealth/blueprint/internal/submission"
)

// openStore opens and migrates the configured store.
func openStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Driver {
	case "", "sqlite":
		dsn := c.DatabaseURL
		if dsn == "" {
			dsn = "blueprint.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.DatabaseURL, &store.PoolConfig{MaxConns: c.MaxConns, MinConns: c.MinConns})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newScorer builds a scorer from the scoring config, letting a non-empty
// flag override the configured rule set name.
func newScorer(c config.ScoringConfig, ruleSet, ruleSetFile string) (*scorer.Scorer, error) {
	name, path := c.RuleSet, c.RuleSetFile
	if ruleSetFile != "" {
		name, path = "", ruleSetFile
	} else if ruleSet != "" {
		name, path = ruleSet, ""
	}
	rs, err := scorer.Resolve(name, path)
	if err != nil {
		return nil, err
	}
	return scorer.New(rs)
}

// openService opens the store and builds a submission service without
// delivery, for offline commands.
func openService(ctx context.Context) (*submission.Service, store.Store, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	sc, err := newScorer(cfg.Scoring, "", "")
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}
	svc, err := submission.New(submission.Options{Store: st, Scorer: sc, Renderer: document.NewRenderer()})
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}
	return svc, st, nil
}
