package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrObjectNotFound reports that the requested key does not exist upstream.
var ErrObjectNotFound = errors.New("object not found upstream")

// Entry is one name in an upstream or cache listing.
type Entry struct {
	Name     string
	Dir      bool
	Size     int64
	Modified time.Time
	Source   string // "cache" or "s3"
}

// Fetcher pulls artifacts from the upstream bucket. The proxy core only
// sees this contract, so tests run against a fake and production shells out
// to the aws CLI, which shares the credential chain the watcher renews.
type Fetcher interface {
	// Fetch downloads key into dest. The write must be atomic: dest
	// either does not exist or holds the complete object.
	Fetch(ctx context.Context, key, dest string) error

	// List returns the immediate children under prefix ("" for the
	// bucket root).
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// CLIFetcher implements Fetcher through `aws s3api`. There is no AWS SDK in
// this repository on purpose: the CLI is already a hard dependency of the
// login flow and resolves credentials exactly the same way.
type CLIFetcher struct {
	Bucket  string
	Profile string
	Region  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewCLIFetcher creates a CLIFetcher with a 60s per-object timeout.
func NewCLIFetcher(bucket, profile, region string, logger *slog.Logger) *CLIFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIFetcher{
		Bucket:  bucket,
		Profile: profile,
		Region:  region,
		Timeout: 60 * time.Second,
		Logger:  logger,
	}
}

func (f *CLIFetcher) common() []string {
	args := []string{"--bucket", f.Bucket, "--output", "json"}
	if f.Profile != "" {
		args = append(args, "--profile", f.Profile)
	}
	if f.Region != "" {
		args = append(args, "--region", f.Region)
	}
	return args
}

// Fetch downloads into a sibling temp file and renames it into place.
func (f *CLIFetcher) Fetch(ctx context.Context, key, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	args := append([]string{"s3api", "get-object", "--key", key}, f.common()...)
	args = append(args, tmpName)

	stderr, err := f.run(ctx, args)
	if err != nil {
		if strings.Contains(stderr, "NoSuchKey") || strings.Contains(stderr, "(404)") {
			return ErrObjectNotFound
		}
		return fmt.Errorf("s3 get-object %s: %w: %s", key, err, stderr)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("move fetched object into cache: %w", err)
	}
	return nil
}

type listPage struct {
	Contents []struct {
		Key          string `json:"Key"`
		Size         int64  `json:"Size"`
		LastModified string `json:"LastModified"`
	} `json:"Contents"`
	CommonPrefixes []struct {
		Prefix string `json:"Prefix"`
	} `json:"CommonPrefixes"`
}

// List shells out to list-objects-v2 with a "/" delimiter so common
// prefixes come back as directories.
func (f *CLIFetcher) List(ctx context.Context, prefix string) ([]Entry, error) {
	args := append([]string{"s3api", "list-objects-v2", "--delimiter", "/"}, f.common()...)
	if prefix != "" {
		args = append(args, "--prefix", prefix)
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	cmd := f.command(ctx, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("s3 list-objects-v2 %q: %w: %s", prefix, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		// The CLI prints nothing for an empty result set.
		return nil, nil
	}

	var page listPage
	if err := json.Unmarshal(stdout.Bytes(), &page); err != nil {
		return nil, fmt.Errorf("parse list-objects-v2 output: %w", err)
	}

	var entries []Entry
	for _, cp := range page.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(cp.Prefix, prefix), "/")
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Name: name, Dir: true, Source: "s3"})
	}
	for _, obj := range page.Contents {
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" || strings.HasSuffix(name, "/") || strings.Contains(name, "/") {
			continue
		}
		e := Entry{Name: name, Size: obj.Size, Source: "s3"}
		if t, err := time.Parse(time.RFC3339, obj.LastModified); err == nil {
			e.Modified = t
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (f *CLIFetcher) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "aws", args...)
	cmd.WaitDelay = 5 * time.Second
	return cmd
}

func (f *CLIFetcher) run(ctx context.Context, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	cmd := f.command(ctx, args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return strings.TrimSpace(stderr.String()), err
}
