package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"taskreward/internal/ops"
)

func backupCmd(a *app) *cobra.Command {
	var out string
	var toS3 bool
	var presign time.Duration
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory as .tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = filepath.Join(a.cfg.Backup.Dir, ops.ArchiveName(time.Now()))
			}
			res, err := ops.Backup(a.cfg.Data.Dir, out)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Fprintf(color.Output, "backup created: %s (%d files, %d bytes)\n", res.Path, res.Files, res.Bytes)

			if !toS3 {
				return nil
			}
			s3s, err := a.s3Store(cmd)
			if err != nil {
				return err
			}
			key, err := s3s.Upload(cmd.Context(), res.Path)
			if err != nil {
				return err
			}
			fmt.Fprintf(color.Output, "uploaded: s3://%s/%s\n", a.cfg.Backup.S3Bucket, key)
			if presign > 0 {
				url, err := s3s.Presign(cmd.Context(), key, presign)
				if err != nil {
					return err
				}
				fmt.Fprintln(color.Output, url)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output archive path (defaults to backup.dir)")
	cmd.Flags().BoolVar(&toS3, "s3", false, "also upload the archive to backup.s3_bucket")
	cmd.Flags().DurationVar(&presign, "presign", 0, "print a download URL valid for this long")
	return cmd
}

func restoreCmd(a *app) *cobra.Command {
	var target, s3Key string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "restore [archive]",
		Short: "Unpack a backup archive into a data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive := ""
			if len(args) == 1 {
				archive = args[0]
			}
			switch {
			case s3Key != "" && archive != "":
				return fmt.Errorf("give either an archive path or --from-s3, not both")
			case s3Key != "":
				s3s, err := a.s3Store(cmd)
				if err != nil {
					return err
				}
				tmp, err := os.MkdirTemp("", "taskreward-restore-")
				if err != nil {
					return err
				}
				defer os.RemoveAll(tmp)
				archive = filepath.Join(tmp, filepath.Base(s3Key))
				if err := s3s.Download(cmd.Context(), s3Key, archive); err != nil {
					return err
				}
			case archive == "":
				return fmt.Errorf("archive path or --from-s3 is required")
			}

			if target == "" {
				target = a.cfg.Data.Dir
			}
			n, err := ops.Restore(archive, target, overwrite)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintf(color.Output, "restore complete: %s (%d files)\n", target, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "restore into this directory (defaults to data.dir)")
	cmd.Flags().StringVar(&s3Key, "from-s3", "", "download this object key from backup.s3_bucket first")
	cmd.Flags().BoolVar(&overwrite, "force", false, "allow restoring into a non-empty directory")
	return cmd
}

func drillCmd(a *app) *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore into a scratch dir and compare digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workDir == "" {
				workDir = filepath.Join(os.TempDir(), "taskreward-drill")
			}
			res, err := ops.Drill(a.cfg.Data.Dir, workDir, time.Now())
			if err != nil {
				return fmt.Errorf("drill failed: %w", err)
			}
			fmt.Fprintf(color.Output, "%s drill passed\n", color.GreenString("✓"))
			fmt.Fprintf(color.Output, "archive: %s\n", res.Archive)
			fmt.Fprintf(color.Output, "restore: %s\n", res.RestoreDir)
			fmt.Fprintf(color.Output, "digest:  %s\n", res.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work-dir", "", "scratch directory for the archive and restore")
	return cmd
}

func (a *app) s3Store(cmd *cobra.Command) (*ops.S3Store, error) {
	b := a.cfg.Backup
	if !b.S3Enabled() {
		return nil, fmt.Errorf("backup.s3_bucket is not configured")
	}
	return ops.NewS3Store(cmd.Context(), ops.S3Options{
		Bucket:    b.S3Bucket,
		Prefix:    b.S3Prefix,
		Region:    b.S3Region,
		Endpoint:  b.S3Endpoint,
		AccessKey: b.S3AccessKey,
		SecretKey: b.S3SecretKey,
	})
}
