// stacksym - renders heap profiler stack snapshots, optionally symbolicated
// through source maps
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"

	"github.com/chazu/lisa/sourcemap"
	"github.com/chazu/lisa/stacktrace"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("stacksym")

// mapManifest is the TOML symbolication manifest: script names as the VM
// reports them, mapped to source map files on disk.
//
//	[sourcemaps]
//	"test.js" = "maps/test.js.map"
type mapManifest struct {
	SourceMaps map[string]string `toml:"sourcemaps"`
}

func main() {
	mapsPath := flag.String("maps", "", "TOML manifest mapping script names to source map files")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stacksym [options] <snapshot.cbor>\n\n")
		fmt.Fprintf(os.Stderr, "Prints a heap profiler stack snapshot as an indented tree.\n")
		fmt.Fprintf(os.Stderr, "With -maps, node positions are remapped to original source.\n\n")
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

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Errorf("cannot read snapshot: %v", err)
		os.Exit(1)
	}
	snapshot, err := stacktrace.UnmarshalSnapshot(data)
	if err != nil {
		log.Errorf("cannot decode snapshot: %v", err)
		os.Exit(1)
	}

	remapper := sourcemap.NewRemapper()
	if *mapsPath != "" {
		if err := loadMaps(remapper, *mapsPath); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	}

	fmt.Printf("snapshot %s captured %s\n",
		snapshot.ID, snapshot.CapturedAt.Format("2006-01-02 15:04:05 MST"))
	printNode(remapper, snapshot.Root, 0)
}

// loadMaps reads the manifest and registers every referenced source map.
// Map paths are resolved relative to the manifest file.
func loadMaps(remapper *sourcemap.Remapper, manifestPath string) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", manifestPath, err)
	}
	var manifest mapManifest
	if err := toml.Unmarshal(raw, &manifest); err != nil {
		return fmt.Errorf("parse error in %s: %w", manifestPath, err)
	}

	dir := filepath.Dir(manifestPath)
	for script, mapFile := range manifest.SourceMaps {
		if !filepath.IsAbs(mapFile) {
			mapFile = filepath.Join(dir, mapFile)
		}
		mapData, err := os.ReadFile(mapFile)
		if err != nil {
			return fmt.Errorf("cannot read source map %s: %w", mapFile, err)
		}
		if err := remapper.AddSourceMap(script, mapData); err != nil {
			return err
		}
		log.Infof("loaded source map for %s from %s", script, mapFile)
	}
	return nil
}

func printNode(remapper *sourcemap.Remapper, node *stacktrace.SnapshotNode, depth int) {
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	if loc, ok := remapper.Remap(node.ScriptName, node.Line, node.Column); ok {
		fmt.Printf("%s%s %s:%d:%d\n", indent, node.Name, loc.File, loc.Line, loc.Column)
	} else {
		fmt.Printf("%s%s %s:%d:%d\n", indent, node.Name, node.ScriptName, node.Line, node.Column)
	}
	for _, child := range node.Children {
		printNode(remapper, child, depth+1)
	}
}
