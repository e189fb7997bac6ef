// Package probe decides whether a URL is reachable.
//
// A probe is an ordered chain of strategies evaluated until one of them is
// confident:
//
//  1. HEAD: cheap, catches the common case.
//  2. CORS GET: recovers from servers that reject HEAD. It is the only
//     step that reads a real status code, so it is the only step allowed to
//     report a link as broken.
//  3. Opaque GET: tells "offline" from "refused by policy" for the debug
//     log. Its answer is never inspected and always degrades to
//     indeterminate.
//
// Every step runs under its own timeout and there are no retries; the chain
// is the retry strategy. Network failures never surface as errors, they end
// up as an indeterminate verdict.
package probe
