// Package publish uploads built registry artifacts to S3-compatible object
// storage.
//
// Every file under the output directory becomes one object under the
// configured key prefix, so public/r/hero1.json is served from
// s3://<bucket>/<prefix>hero1.json. Objects carry the hex SHA-256 of their
// body in the content-sha256 metadata entry.
package publish

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/contenthash"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/logging"
	"github.com/kata-shadcn/kata-registry/internal/parallel"
)

// MetadataSHA256 is the object metadata key holding the body digest.
const MetadataSHA256 = "content-sha256"

// PutObjectAPI is the subset of *s3.Client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient creates an S3 client from the publish configuration. Credentials
// come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func NewClient(cfg config.PublishConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("KR152").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return creds, nil
}

// Object is one planned upload.
type Object struct {
	Key    string
	Path   string
	Size   int64
	SHA256 string
}

// Options configures a Publisher.
type Options struct {
	Bucket string
	Prefix string

	// CacheControl is set on every object when not empty.
	CacheControl string

	// Concurrency bounds in-flight uploads. Zero uses the host default.
	Concurrency int

	// DryRun plans the upload without contacting storage.
	DryRun bool

	Logger *zap.Logger

	// OnObject is called after each object is uploaded, or planned in a dry run.
	// It may be called concurrently.
	OnObject func(o Object)
}

// Result summarizes a publish run.
type Result struct {
	Objects []Object
	Bytes   int64
	DryRun  bool
}

// Publisher uploads a directory tree.
type Publisher struct {
	client PutObjectAPI
	opts   Options
	logger *zap.Logger
}

// New creates a Publisher. client may be nil for dry runs.
func New(client PutObjectAPI, opts Options) *Publisher {
	logger := logging.OrNop(opts.Logger)
	return &Publisher{client: client, opts: opts, logger: logger}
}

// Plan lists the objects dir would be published as, sorted by key.
func (p *Publisher) Plan(dir string) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}
		sum, err := contenthash.File(file)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		objects = append(objects, Object{
			Key:    Key(p.opts.Prefix, rel),
			Path:   file,
			Size:   info.Size(),
			SHA256: sum,
		})
		return nil
	})
	if err != nil {
		return nil, errors.New("KR152").WithFile(dir).Wrap(err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Key joins prefix and a slash-separated relative path.
func Key(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// Publish uploads every file under dir.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	if !p.opts.DryRun {
		if p.opts.Bucket == "" {
			return nil, errors.New("KR161").
				WithDetail("publish.bucket is not set").
				WithSuggestion("Pass --bucket or set KATA_REGISTRY_PUBLISH_BUCKET")
		}
		if p.client == nil {
			return nil, errors.New("KR152").WithDetail("no storage client configured")
		}
	}

	objects, err := p.Plan(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{Objects: objects, DryRun: p.opts.DryRun}
	for _, o := range objects {
		result.Bytes += o.Size
	}

	if p.opts.DryRun {
		for _, o := range objects {
			p.notify(o)
		}
		return result, nil
	}

	tasks := make([]parallel.Task, 0, len(objects))
	for _, o := range objects {
		o := o
		tasks = append(tasks, func(ctx context.Context) error {
			return p.upload(ctx, o)
		})
	}
	if err := parallel.NewExecutor(p.opts.Concurrency).Run(ctx, tasks...); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Publisher) upload(ctx context.Context, o Object) error {
	data, err := os.ReadFile(o.Path)
	if err != nil {
		return errors.New("KR152").WithFile(o.Path).Wrap(err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.opts.Bucket),
		Key:           aws.String(o.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(o.Key)),
		Metadata: map[string]string{
			MetadataSHA256: o.SHA256,
		},
	}
	if p.opts.CacheControl != "" {
		input.CacheControl = aws.String(p.opts.CacheControl)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return errors.New("KR152").
			WithDetailf("s3://%s/%s", p.opts.Bucket, o.Key).
			Wrap(err)
	}

	p.logger.Debug("uploaded object",
		zap.String("key", o.Key),
		zap.Int64("size", o.Size))
	p.notify(o)
	return nil
}

func (p *Publisher) notify(o Object) {
	if p.opts.OnObject != nil {
		p.opts.OnObject(o)
	}
}

func contentType(key string) string {
	if strings.HasSuffix(key, ".json") {
		return "application/json"
	}
	return "application/octet-stream"
}
