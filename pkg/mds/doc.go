// Package mds exposes the MDS resource families (entities, instances and
// settings) as typed helpers over a resource.Client. Every helper returns the
// pending call; use Wait to obtain the arity-shaped result.
package mds
