// Package report formats benchmark results. The harness itself never prints;
// callers pass a bench.Result to a Reporter.
//
// Text renders a summary or raw table, Prometheus feeds a duration histogram
// and Influx writes one InfluxDB point per measurement. Multi combines them.
package report
