package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/learning"
	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/model"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/search"
	"github.com/jonathan/career-path/internal/storage"
)

// needsObjectStore reports whether anything in cfg lives in object storage:
// a custom endpoint, a résumé bucket or an s3:// model artifact.
func needsObjectStore(cfg *config.Config) bool {
	if cfg.Storage.Endpoint != "" || cfg.ResumeBucket != "" {
		return true
	}
	p := modelPaths(cfg.Model)
	for _, path := range []string{p.Classifier, p.LabelEncoder, p.SkillsVectorizer, p.InterestsVectorizer, p.EducationMap} {
		if _, _, ok := storage.ParseURI(path); ok {
			return true
		}
	}
	return false
}

// openObjectStore returns the S3 store when one is needed, nil otherwise.
func openObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if !needsObjectStore(cfg) {
		return nil, nil
	}
	store, err := storage.NewS3Store(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}
	return store, nil
}

func modelPaths(m config.ModelConfig) model.Paths {
	return model.Paths{
		Classifier:          m.ClassifierPath,
		LabelEncoder:        m.LabelEncoderPath,
		SkillsVectorizer:    m.SkillsVectorizerPath,
		InterestsVectorizer: m.InterestsVectorizerPath,
		EducationMap:        m.EducationMapPath,
		EducationDefault:    m.EducationDefault,
	}
}

// loadBundle loads the model artifacts. A missing or broken bundle is not
// fatal: the caller gets nil and predictions degrade to the static result.
func loadBundle(ctx context.Context, cfg *config.Config, store storage.ObjectStore, logger *zap.Logger) *model.Bundle {
	bundle, err := model.Load(ctx, modelPaths(cfg.Model), store)
	if err != nil {
		if errors.Is(err, model.ErrModelUnavailable) {
			logger.Warn("model artifacts unavailable, serving fallback predictions", zap.Error(err))
		} else {
			logger.Error("failed to load model artifacts", zap.Error(err))
		}
		observability.SetModelLoaded(false)
		return nil
	}
	observability.SetModelLoaded(true)
	logger.Info("model artifacts loaded",
		zap.Int("classes", bundle.Labels.Len()),
		zap.Int("feature_width", bundle.FeatureWidth()))
	return bundle
}

// llmConfigs builds one client config per configured provider, in
// fallback order.
func llmConfigs(c config.LLMConfig) []*llm.Config {
	out := make([]*llm.Config, 0, len(c.Providers))
	for _, name := range c.Providers {
		lc := &llm.Config{Provider: llm.Provider(name), Timeout: c.Timeout, Temperature: 0.7}
		switch lc.Provider {
		case llm.ProviderOpenAI:
			lc.APIKey, lc.Model, lc.BaseURL = c.OpenAIKey, c.OpenAIModel, c.OpenAIBaseURL
		case llm.ProviderGemini:
			lc.APIKey, lc.Model = c.GeminiKey, c.GeminiModel
		case llm.ProviderGenAI:
			lc.APIKey, lc.Model = c.GenAIKey, c.GenAIModel
			lc.Project, lc.Location = c.GenAIProject, c.GenAILocation
		}
		out = append(out, lc)
	}
	return out
}

func newLLMClients(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]llm.Client, error) {
	var clients []llm.Client
	for _, lc := range llmConfigs(cfg.LLM) {
		client, err := llm.NewClient(ctx, lc)
		if err != nil {
			for _, c := range clients {
				_ = c.Close()
			}
			return nil, fmt.Errorf("failed to create %s client: %w", lc.Provider, err)
		}
		if !lc.HasCredential() {
			logger.Warn("LLM provider has no credentials, it will be skipped", zap.String("provider", string(lc.Provider)))
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// newSearchService orders backends Google first (when keyed), then
// DuckDuckGo.
func newSearchService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*search.Service, error) {
	var backends []search.Backend
	if cfg.Search.APIKey != "" && cfg.Search.CX != "" {
		g, err := search.NewGoogle(ctx, cfg.Search.APIKey, cfg.Search.CX)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google search client: %w", err)
		}
		backends = append(backends, g)
	}
	if cfg.Search.APIURL != "" {
		backends = append(backends, search.NewDuckDuckGo(cfg.Search.APIURL, &http.Client{Timeout: cfg.Search.Timeout}))
	}

	return search.New(search.Options{
		Timeout:     cfg.Search.Timeout,
		MaxResults:  cfg.Search.MaxWebResults,
		ResourceURL: cfg.Search.DefaultResourceURL,
		Logger:      logger,
	}, backends...), nil
}

func loadCatalogs(cfg *config.Config) (roadmaps, info *learning.Catalog, err error) {
	if cfg.CareerRoadmapPath != "" {
		if roadmaps, err = learning.LoadCatalog(cfg.CareerRoadmapPath); err != nil {
			return nil, nil, fmt.Errorf("failed to load career roadmaps: %w", err)
		}
	}
	if cfg.CareerInfoPath != "" {
		if info, err = learning.LoadCatalog(cfg.CareerInfoPath); err != nil {
			return nil, nil, fmt.Errorf("failed to load career info: %w", err)
		}
	}
	return roadmaps, info, nil
}
