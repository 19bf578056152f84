package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mind-engage/mindengage-cgpa/internal/tools/cgpaconv"
)

func main() {
	cfg, err := cgpaconv.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		exitf("parse flags: %v", err)
	}
	if err := cgpaconv.Run(context.Background(), cfg, nil, os.Stdout); err != nil {
		exitf("%v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
