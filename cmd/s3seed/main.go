// cmd/s3seed/main.go
//
// Uploads a local fixture tree into the backup bucket, preserving relative
// paths under the configured root. Meant for development against MinIO or
// S3Mock: seed a directory laid out as
// <device_class>/<vendor>/<hostname>/backup.json (plus template.json files)
// and point fleetwatch at the same bucket.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/inetops/fleetwatch/internal/adapter/storage"
	"github.com/inetops/fleetwatch/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	dir := flag.String("dir", "", "local directory to upload")
	flag.Parse()

	if *dir == "" {
		return fmt.Errorf("-dir is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := storage.NewS3(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize object store: %w", err)
	}

	ctx := context.Background()
	uploaded := 0

	err = filepath.WalkDir(*dir, func(local string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(*dir, local)
		if err != nil {
			return err
		}
		key := path.Join(cfg.Storage.RootDir, filepath.ToSlash(rel))

		f, err := os.Open(local)
		if err != nil {
			return fmt.Errorf("open %s: %w", local, err)
		}

		log.Printf("Uploading %s to %s", local, key)
		uploadErr := store.Upload(ctx, key, f)
		f.Close()
		if uploadErr != nil {
			return uploadErr
		}

		uploaded++
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Uploaded %d file(s) to bucket %s", uploaded, cfg.Storage.Bucket)
	return nil
}
