// Package giterror classifies errors returned by the GitHub GraphQL API.
// The aggregator uses it to label failed batches and the GraphQL client uses
// it to map raw transport errors onto the sentinels in internal/errors.
package giterror
