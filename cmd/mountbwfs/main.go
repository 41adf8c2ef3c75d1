// Command mountbwfs mounts an existing BWFS store at a host directory
// using FUSE (spec.md §6, §4.7, SPEC_FULL.md §6).
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/urfave/cli/v2"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/bridge"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/engine"
)

func main() {
	app := &cli.App{
		Name:      "mountbwfs",
		Usage:     "mount a Black & White image filesystem store over FUSE",
		ArgsUsage: "<mount-point>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to a JSON configuration file (spec.md §6)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "foreground",
				Aliases: []string{"f"},
				Usage:   "log every FUSE operation instead of running quietly",
			},
		},
		Action: runMount,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("mountbwfs: %s", err)
	}
}

func runMount(c *cli.Context) error {
	mountPoint := c.Args().First()
	if mountPoint == "" {
		return fmt.Errorf("missing required <mount-point> argument")
	}

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	eng, err := engine.Mount(cfg)
	if err != nil {
		return fmt.Errorf("fatal: %w", err)
	}

	root := bridge.Root(eng)
	server, err := fs.Mount(mountPoint, root, &fs.Options{
		MountOptions: fuseMountOptions(c.Bool("foreground")),
	})
	if err != nil {
		return fmt.Errorf("mounting at %s: %w", mountPoint, err)
	}

	go waitForSignalThenUnmount(eng, server)

	log.Printf("mountbwfs: mounted %q on %s", cfg.Name, mountPoint)
	server.Wait()
	return eng.Unmount()
}

func waitForSignalThenUnmount(eng *engine.FS, server interface{ Unmount() error }) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := eng.Checkpoint(); err != nil {
		log.Printf("mountbwfs: checkpoint before unmount: %s", err)
	}
	if err := server.Unmount(); err != nil {
		log.Printf("mountbwfs: unmount: %s", err)
	}
}

func fuseMountOptions(foreground bool) fuse.MountOptions {
	return fuse.MountOptions{
		Debug:      foreground,
		FsName:     "bwfs",
		Name:       "bwfs",
		AllowOther: false,
	}
}

func loadConfig(path string) (bwfs.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bwfs.Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg bwfs.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return bwfs.Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return bwfs.Config{}, err
	}
	return cfg, nil
}
