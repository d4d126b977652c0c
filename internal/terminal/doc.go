// Package terminal runs external commands against a virtual working directory.
//
// A [Terminal] owns its current directory and a pushd/popd stack. Commands
// run with that directory as their working directory; the process's own
// working directory is never changed, so several terminals rooted at
// different directories can coexist (one per monorepo, one per test).
//
// # Implementations
//
//   - [Local]: runs commands with [os/exec], captures combined output
//   - [Logging]: decorator that records every call to a [log.Sink]
//
// Decorators wrap any Terminal, including other decorators:
//
//	term, _ := terminal.NewLocal(dir)
//	var t terminal.Terminal = terminal.NewLogging(term, sink)
//
// # Exit status
//
// [Terminal.Exec] always reports the real exit status in the returned
// [Invocation]. A non-zero status is not an error by itself; use
// [Invocation.Err] to turn it into a [*CommandError]. The returned error is
// reserved for commands that could not run at all (missing binary, context
// cancelled or timed out).
//
// # Concurrency
//
// A Terminal is not safe for concurrent use. PushDirectory/PopDirectory
// pairs assume no interleaving; concurrent workflows need one Terminal each.
package terminal
