/*
Package compgraph builds and executes computational graphs over
streams of structured records ("rows"): callers compose Map, Reduce,
Sort, and Join stages into a directed graph and then Run the graph
against one or more named input row sources.

A Graph is an immutable plan. Each combinator — Map, Reduce, Sort,
Join — returns a new Graph without touching the receiver, so a Graph
built once can be run many times, and sub-graphs can share a common
prefix without copying it. Execution is pull-based and single-threaded:
Run resolves the graph's input and walks its stages as a chain of lazy
row-stream transformers; nothing downstream is computed until the
caller asks for it.
*/
package compgraph
