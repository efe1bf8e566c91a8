//go:build !unix

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext cancels on interrupt (non-Unix platforms)
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
