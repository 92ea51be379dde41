// Package main hosts the mediapull CLI entrypoint and command graph.
//
// The Cobra command tree exposes the download pipeline (run), metadata
// analysis (analyze), the download history store, temp artifact housekeeping,
// dependency checks (doctor), and configuration scaffolding. It centralizes
// configuration resolution and logger setup so subcommands can focus on
// presenting results.
//
// run and analyze write newline-delimited JSON events to stdout and send
// their terminal failure through the same stream; every other command prints
// tables or, with --json, indented JSON. Logs always go to stderr and the
// optional log file.
package main
