// Package mock provides test doubles for the ai interfaces so the
// ingestion pipeline can be exercised without a live extraction service.
package mock
