// Command mkbwfs initializes a new BWFS store from a JSON
// configuration file (spec.md §6, SPEC_FULL.md §6).
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/engine"
)

func main() {
	app := &cli.App{
		Name:  "mkbwfs",
		Usage: "initialize a new Black & White image filesystem store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to a JSON configuration file (spec.md §6)",
				Required: true,
			},
		},
		Action: runMkfs,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("mkbwfs: %s", err)
	}
}

func runMkfs(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	fs, err := engine.Mkfs(cfg)
	if err != nil {
		return fmt.Errorf("mkfs: %w", err)
	}
	if err := fs.Unmount(); err != nil {
		return fmt.Errorf("writing initial checkpoint: %w", err)
	}

	fmt.Printf("initialized %q at %s (%d blocks, %d inodes, %dx%d per block)\n",
		cfg.Name, cfg.StoragePath, cfg.TotalBlocks, cfg.TotalInodes, cfg.BlockWidth, cfg.BlockHeight)
	return nil
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
