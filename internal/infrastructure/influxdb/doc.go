// Package influxdb provides an optional, best-effort mirror of usage
// readings to an InfluxDB v2 time-series backend.
//
// SQLite remains the source of truth; the mirror exists for dashboards and
// retention policies that a relational store handles poorly. Writes are
// batched and asynchronous, and a mirror failure never fails the ledger
// operation that triggered it.
package influxdb
