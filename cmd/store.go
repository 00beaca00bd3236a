package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/internal/blob"
	"github.com/sells-group/claims-cli/internal/docai"
	"github.com/sells-group/claims-cli/internal/pipeline"
	"github.com/sells-group/claims-cli/internal/store"
	anthropicpkg "github.com/sells-group/claims-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "claims.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initBlob() (*blob.MinioGateway, error) {
	return blob.NewMinio(cfg.Blob)
}

// pipelineEnv bundles the pipeline with the resources it borrows, so
// commands can tear everything down with one Close.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Store    store.Store
	Blob     *blob.MinioGateway
}

func (e *pipelineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	gw, err := initBlob()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := gw.EnsureBucket(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	docaiClient := docai.NewClient(cfg.Docai)
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	return &pipelineEnv{
		Pipeline: pipeline.New(cfg, st, gw, docaiClient, anthropicClient),
		Store:    st,
		Blob:     gw,
	}, nil
}
