package main

import "context"

// cliCtx is the background context used for the short-lived composer
// operations a single CLI invocation performs.
func cliCtx() context.Context {
	return context.Background()
}
