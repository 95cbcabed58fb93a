// Command pcrextest is a pcretest-style driver for the pcrex engine.
//
//	pcrextest -i '(\w+)@(\w+)' 'mail Bob@Example'
//	 0: Bob@Example
//	 1: Bob
//	 2: Example
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
)

func main() {
	root := newRootCmd()

	// glog registers its flags on the standard flag set.
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	// hack to get rid of an "ERROR: logging before flag.Parse"
	args := os.Args[:]
	os.Args = os.Args[:1]
	flag.Parse()
	os.Args = args

	err := root.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pcrextest:", err)
		os.Exit(1)
	}
}
