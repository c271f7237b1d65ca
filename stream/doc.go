// Package stream is the top-level entry point: it drives a raw source
// (binary or text) through the expansion engine, one top-level value per
// Next call, resetting arena state between values.
package stream
