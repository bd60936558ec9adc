// Package filtergraph schedules the call-screening filters for one
// incoming call as a dependency-counted DAG.
//
// Filters with no declared predecessors run concurrently as soon as
// filtering starts; chained filters run once every predecessor has
// stored a verdict, receiving the fold of exactly those verdicts. A
// synthetic start node feeds the initial frontier and a completion
// sentinel, depending on every filter, is the single normal-path
// finalization trigger. A session-wide deadline guard delivers a
// fallback verdict when filters are too slow and sweeps resource
// releases over all registered filters.
//
// All graph bookkeeping (indegree decrements, verdict storage,
// activation, finalization) is serialized on one executor goroutine;
// only the filters' Run calls overlap.
package filtergraph
