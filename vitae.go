// Copyright 2026 Vitae Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vitae

import (
	"log/slog"

	"github.com/vitaeworks/vitae/ai"
	"github.com/vitaeworks/vitae/ai/openai"
	"github.com/vitaeworks/vitae/ingest"
	"github.com/vitaeworks/vitae/pubmed"
	"github.com/vitaeworks/vitae/storage/badger"
)

// Service bundles storage, the extraction provider and the PubMed client
// behind one handle. It is the main entry point for embedding the engine.
type Service struct {
	stores   *badger.Stores
	provider ai.Provider
	searcher pubmed.Searcher
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig   *ai.Config
	inMemory   bool
	pubmedOpts []pubmed.ClientOption
}

// WithAIConfig sets the extraction service configuration.
func WithAIConfig(cfg *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithInMemory keeps all state in memory, for tests and experiments.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithPubMedOptions forwards options to the PubMed client.
func WithPubMedOptions(opts ...pubmed.ClientOption) ServiceOption {
	return func(o *serviceOptions) {
		o.pubmedOpts = append(o.pubmedOpts, opts...)
	}
}

// Open opens the database at filePath and wires up all components.
func Open(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	stores, err := badger.OpenStores(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		stores.Close()
		return nil, err
	}

	return &Service{
		stores:   stores,
		provider: provider,
		searcher: pubmed.NewClient(options.pubmedOpts...),
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider and all storage resources.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing extraction provider", "err", err)
	}
	return s.stores.Close()
}

// Stores exposes the repository set.
func (s *Service) Stores() *badger.Stores {
	return s.stores
}

// NewPipeline creates an ingestion pipeline over this service's stores.
func (s *Service) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(
		s.stores.Jobs,
		s.stores.Categories,
		s.stores.Entries,
		s.provider.Extractor(),
		opts...)
}

// NewReconciler creates a PubMed reconciler over this service's stores.
func (s *Service) NewReconciler(opts ...pubmed.ReconcilerOption) (*pubmed.Reconciler, error) {
	return pubmed.NewReconciler(
		s.searcher,
		s.stores.Entries,
		s.stores.Candidates,
		s.stores.Subscriptions,
		s.stores.Activity,
		opts...)
}

// NewEnricher creates a PubMed identifier enricher over this service's stores.
func (s *Service) NewEnricher() (*pubmed.Enricher, error) {
	return pubmed.NewEnricher(s.searcher, s.stores.Entries, s.logger)
}
