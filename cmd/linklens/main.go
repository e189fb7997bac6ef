// Package main provides the entry point for the linklens CLI.
//
// linklens annotates the links of a web page: it classifies every anchor,
// checks whether its target is reachable, colours it accordingly and can
// show a hover preview of the link target.
//
// Usage:
//
//	linklens check <url|file>
//	linklens preview <url|file> --href <href>
//	linklens settings [highlight|preview] [on|off]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
