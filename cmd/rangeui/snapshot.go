package main

import (
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/snapshot"
)

func snapshotCmd(c *cli) *cobra.Command {
	var (
		clicks []string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "snapshot [name]",
		Short: "Publish the rendered demo application",
		Long: `Render the demo application, apply any clicks and publish the page.

Pages go to the configured S3 bucket unless --dir is given, in which
case they are written below that directory. Object keys carry a hash of
the page content, so identical renders map to the same key.

S3 credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
and AWS_SESSION_TOKEN.

Examples:
  rangeui snapshot --dir ./out
  rangeui snapshot home --click add --bucket my-bucket`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "index"
			if len(args) == 1 {
				name = args[0]
			}

			store, where, err := c.snapshotStore(dir)
			if err != nil {
				return err
			}

			doc, err := c.renderDemo(cmd, clicks)
			if err != nil {
				return err
			}

			pub := snapshot.NewPublisher(store, snapshot.WithLogger(c.logger))
			obj, err := pub.Publish(cmd.Context(), doc, name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			success(out, "Published %s", obj.Key)
			info(out, "Store:  %s", where)
			info(out, "Size:   %d bytes", len(obj.Body))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&clicks, "click", nil, "data-action to click before publishing (repeatable)")
	cmd.Flags().StringVar(&dir, "dir", "", "write to a local directory instead of S3")
	cmd.Flags().String("bucket", "", "S3 bucket (default from config)")
	cmd.Flags().String("prefix", "", "object key prefix (default from config)")
	cmd.Flags().String("region", "", "AWS region (default from config)")
	_ = c.v.BindPFlag("snapshot.bucket", cmd.Flags().Lookup("bucket"))
	_ = c.v.BindPFlag("snapshot.prefix", cmd.Flags().Lookup("prefix"))
	_ = c.v.BindPFlag("snapshot.region", cmd.Flags().Lookup("region"))

	return cmd
}

// snapshotStore picks the store and describes where it writes.
func (c *cli) snapshotStore(dir string) (snapshot.Store, string, error) {
	if dir != "" {
		store, err := snapshot.NewDiskStore(dir)
		if err != nil {
			return nil, "", err
		}
		return store, dir, nil
	}

	cfg := c.cfg.Snapshot
	if cfg.Bucket == "" {
		return nil, "", errors.New("E301").
			WithDetail("snapshot.bucket is required when --dir is not set").
			WithSuggestion("Pass --bucket, set RANGEUI_SNAPSHOT_BUCKET, or use --dir")
	}
	akid, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if akid == "" || secret == "" {
		return nil, "", errors.New("E402").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}

	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: snapshot.StaticCredentials(akid, secret, os.Getenv("AWS_SESSION_TOKEN")),
	})
	return snapshot.NewS3Store(client, cfg.Bucket, cfg.Prefix), "s3://" + cfg.Bucket + "/" + cfg.Prefix, nil
}
