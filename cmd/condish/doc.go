// Command condish is the command-line client of the condish inspection
// daemon. Every subcommand except `config` talks to condishd over its HTTP
// API; `--json` prints the raw API payloads instead of tables.
package main
