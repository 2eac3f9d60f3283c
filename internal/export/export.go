// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"

	"github.com/staranto/assetctl/internal/cache"
)

// Kind is where a Target writes.
type Kind int

const (
	KindStdout Kind = iota
	KindFile
	KindDir
	KindS3
)

func (k Kind) String() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindS3:
		return "s3"
	default:
		return "unknown"
	}
}

var ErrNoBucket = errors.New("s3 target has no bucket")

// Target is a parsed --out value.
type Target struct {
	Kind Kind
	// Path is the file or directory for KindFile and KindDir.
	Path string
	// Bucket and Key for KindS3. A Key that is empty or ends in "/" is a
	// prefix the file name is appended to.
	Bucket string
	Key    string
}

// ParseTarget interprets out:
//
//	""  or "-"        stdout
//	s3://bucket/key   S3 object (or prefix when ending in "/")
//	path/             directory, created if missing
//	existing dir      directory
//	anything else     file
func ParseTarget(out string) (Target, error) {
	switch {
	case out == "" || out == "-":
		return Target{Kind: KindStdout}, nil
	case strings.HasPrefix(out, "s3://"):
		bucket, key, _ := strings.Cut(strings.TrimPrefix(out, "s3://"), "/")
		if bucket == "" {
			return Target{}, fmt.Errorf("%w: %s", ErrNoBucket, out)
		}
		return Target{Kind: KindS3, Bucket: bucket, Key: key}, nil
	case strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(os.PathSeparator)):
		return Target{Kind: KindDir, Path: filepath.Clean(out)}, nil
	}

	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return Target{Kind: KindDir, Path: out}, nil
	}
	return Target{Kind: KindFile, Path: out}, nil
}

// PutObjectAPI is the subset of the S3 client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink writes resolved handles to a Target.
type Sink struct {
	Target Target
	Stdout io.Writer
	S3     PutObjectAPI
}

// NewSink builds a sink for target. s3c is only needed for KindS3.
func NewSink(target Target, s3c PutObjectAPI) (*Sink, error) {
	if target.Kind == KindS3 && s3c == nil {
		return nil, errors.New("s3 target requires an S3 client")
	}
	return &Sink{Target: target, Stdout: os.Stdout, S3: s3c}, nil
}

// Write stores the content of h. name is the file name used when the target
// is a directory or prefix. It returns where the content went.
func (s *Sink) Write(ctx context.Context, name string, h *cache.Handle) (string, error) {
	rc, err := h.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var where string
	switch s.Target.Kind {
	case KindStdout:
		where = "-"
		_, err = io.Copy(s.Stdout, rc)
	case KindFile:
		where = s.Target.Path
		err = writeFile(where, rc)
	case KindDir:
		if err = os.MkdirAll(s.Target.Path, 0o755); err != nil {
			return "", err
		}
		where = filepath.Join(s.Target.Path, name)
		err = writeFile(where, rc)
	case KindS3:
		key := s.Target.Key
		if key == "" || strings.HasSuffix(key, "/") {
			key += name
		}
		where = "s3://" + s.Target.Bucket + "/" + key
		_, err = s.S3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.Target.Bucket),
			Key:           aws.String(key),
			Body:          rc,
			ContentLength: aws.Int64(int64(h.Size())),
			ContentType:   aws.String(h.ContentType()),
			Metadata:      map[string]string{"asset-id": h.ID()},
		})
	default:
		return "", fmt.Errorf("unsupported target %s", s.Target.Kind)
	}

	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", where, err)
	}

	log.WithField("target", s.Target.Kind).Debugf("wrote %s to %s", humanize.IBytes(uint64(h.Size())), where)
	return where, nil
}

// writeFile writes through a temp file in the same directory so a failed
// write never leaves a truncated asset behind.
func writeFile(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
