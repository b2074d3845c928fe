package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kata-shadcn/kata-registry/internal/publish"
)

func publishCmd(a *app) *cobra.Command {
	var (
		bucket      string
		prefix      string
		endpoint    string
		concurrency int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the built registry to S3-compatible storage",
		Long: `Upload every file in public/r to s3://<bucket>/<prefix>.

Objects are uploaded with Content-Type application/json and a
content-sha256 metadata entry. Credentials are read from
AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.

Examples:
  kata-registry publish --bucket=kata-registry
  kata-registry publish --dry-run
  kata-registry publish --endpoint=http://localhost:9000 --bucket=dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("bucket") {
				cfg.Publish.Bucket = bucket
			}
			if flags.Changed("prefix") {
				cfg.Publish.Prefix = prefix
			}
			if flags.Changed("endpoint") {
				cfg.Publish.Endpoint = endpoint
				cfg.Publish.PathStyle = true
			}
			if flags.Changed("concurrency") {
				cfg.Publish.Concurrency = concurrency
			}

			var client publish.PutObjectAPI
			if !dryRun {
				client = publish.NewClient(cfg.Publish)
			}

			p := publish.New(client, publish.Options{
				Bucket:       cfg.Publish.Bucket,
				Prefix:       cfg.Publish.Prefix,
				CacheControl: "public, max-age=" + strconv.Itoa(cfg.Serve.CacheMaxAge),
				Concurrency:  cfg.Publish.Concurrency,
				DryRun:       dryRun,
				Logger:       a.logger,
				OnObject: func(o publish.Object) {
					if dryRun {
						a.info("%s  %s", o.Key, faint(formatBytes(o.Size)))
					}
				},
			})

			result, err := p.Publish(cmd.Context(), cfg.OutputPath())
			if err != nil {
				return err
			}

			if result.DryRun {
				a.success("Would upload %d objects (%s)", len(result.Objects), formatBytes(result.Bytes))
				return nil
			}
			a.success("Uploaded %d objects (%s) to s3://%s/%s",
				len(result.Objects), formatBytes(result.Bytes), cfg.Publish.Bucket, cfg.Publish.Prefix)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (default from config)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default r/)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL; enables path-style addressing")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent uploads")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List objects without uploading")

	return cmd
}
