// Package main provides zswapsim, a workload driver and interactive
// inspector for the compressed swap cache.
package main

import (
	"os"
	"strings"

	"github.com/kevintm78/zswap/internal/simcli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	os.Exit(simcli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env))
}
