// Package pubmed reconciles stored records against the PubMed bibliographic
// database. It wraps the E-utilities JSON API behind a rate-limited client,
// stages newly published work as pending candidates on a per-subscription
// schedule, and backfills missing PMIDs through a sequential title-search
// batch.
package pubmed
