// dbgdump - disassembles serialized debug info regions
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/lisa/debuginfo"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("dbgdump")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dbgdump [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Disassembles a serialized debug info region to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("cannot open %s: %v", path, err)
		os.Exit(1)
	}
	defer f.Close()

	info, err := debuginfo.ReadDebugInfo(f)
	if err != nil {
		log.Errorf("cannot read debug info from %s: %v", path, err)
		os.Exit(1)
	}

	log.Infof("loaded %s: %d filenames, %d file regions, %d data bytes",
		path, info.Filenames().Len(), len(info.Files()), len(info.Data()))

	info.Disassemble(os.Stdout)
}
