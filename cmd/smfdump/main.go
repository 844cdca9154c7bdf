package main

import (
	"fmt"
	"os"

	"github.com/zurustar/smfparse/pkg/app"
	"github.com/zurustar/smfparse/pkg/fileutil"
)

func main() {
	application := app.New(fileutil.NewRealFS(""), os.Stdout, os.Stderr)
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
