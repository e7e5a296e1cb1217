// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package reader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/DataDog/datadog-agent/pkg/util/log"
	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Supported file suffixes
const (
	GzipSuffix = ".txt.gz"
	ZstdSuffix = ".txt.zst"
)

// listFiles returns the flow files under dir in lexical order, recursing
// into directories as they are met.
func listFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warnf("Skipping %s: %s", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isFlowFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isFlowFile(path string) bool {
	return strings.HasSuffix(path, GzipSuffix) || strings.HasSuffix(path, ZstdSuffix)
}

// flowFile is a decompressed flow file
type flowFile struct {
	io.Reader
	closers []io.Closer
}

func (f *flowFile) Close() error {
	var errs *multierror.Error
	for _, closer := range f.closers {
		if err := closer.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func openFile(path string) (*flowFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, GzipSuffix):
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to read gzip file %s: %w", path, err)
		}
		return &flowFile{Reader: gz, closers: []io.Closer{gz, file}}, nil
	case strings.HasSuffix(path, ZstdSuffix):
		decoder, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to read zstd file %s: %w", path, err)
		}
		rc := decoder.IOReadCloser()
		return &flowFile{Reader: rc, closers: []io.Closer{rc, file}}, nil
	}
	file.Close()
	return nil, fmt.Errorf("unsupported flow file %s", path)
}
