/*
Package observability provides monitoring for the sweep pipeline.

It turns pipeline lifecycle hooks into Prometheus metrics and structured log
records, and combines several hook sets into one.
*/
package observability
