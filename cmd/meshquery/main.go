// meshquery is a CLI for ray, distance and adjacency queries on STL/OBJ meshes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshquery/internal/config"
	"github.com/Faultbox/meshquery/internal/logger"
)

var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(config.Args(), cfg, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		} else {
			logger.Error("command failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

// run dispatches one command. Results go to w.
func run(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	command, args := args[0], args[1:]
	switch command {
	case "info":
		return cmdInfo(args, cfg, w)
	case "hit":
		return cmdHit(args, cfg, w)
	case "hits":
		return cmdHits(args, cfg, w)
	case "dist", "distance":
		return cmdDist(args, cfg, w)
	case "faces":
		return cmdFaces(args, cfg, w)
	case "neighbors":
		return cmdNeighbors(args, cfg, w)
	case "depthmap":
		return cmdDepthmap(args, cfg, w)
	case "config":
		return cmdConfig(args, cfg, w)
	case "help", "-h", "--help":
		printUsage(w)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshquery - spatial queries on triangle meshes

Usage:
  meshquery [flags] <command> [args]

Commands:
  info <mesh>                        Show mesh and index statistics
  hit <mesh> ox oy oz dx dy dz       Closest ray intersection
  hits <mesh> ox oy oz dx dy dz      All ray intersections, nearest first
  dist <mesh> x y z                  Closest surface point
  faces <mesh> <vertex>              Triangles using a vertex
  neighbors <mesh> <face>            Triangles across each edge of a face
  depthmap <mesh>                    Render a depth image (see -view, -out)
  config [path]                      Print or write the effective config

Ray directions are normalized before querying.
Meshes are read from .stl (binary or ASCII) or .obj files.

Flags:
  -config path   -debug   -adaptive-eps   -eps value
  -width n   -height n   -supersample n   -view axis   -out file

Examples:
  meshquery info bunny.stl
  meshquery hit bunny.obj 0 0 5 0 0 -1
  meshquery -view +x -out side.png depthmap bunny.stl`)
}
