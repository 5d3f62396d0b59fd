package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ipg/assemble"
	"ipg/paper"
	"ipg/server"
	"ipg/state"
)

func runGenerate(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no source paper description specified")
	}
	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	src := cmd.Args().Get(0)
	dstDir := cmd.Args().Get(1)
	if len(dstDir) == 0 {
		dstDir = "."
	}

	var (
		in  io.ReadCloser
		err error
	)
	if src == "-" {
		in = os.Stdin
	} else {
		if in, err = os.Open(src); err != nil {
			return fmt.Errorf("unable to open source file: %w", err)
		}
		defer in.Close()
	}

	doc, err := paper.Parse(in)
	if err != nil {
		return fmt.Errorf("unable to parse paper description: %w", err)
	}
	if err := paper.Validate(doc); err != nil {
		return fmt.Errorf("invalid paper description: %w", err)
	}
	if err := paper.Prepare(doc, env.Log); err != nil {
		return fmt.Errorf("invalid paper description: %w", err)
	}

	data, rpt, err := assemble.Build(ctx, doc)
	if err != nil {
		return err
	}
	for _, o := range rpt.Outcomes {
		if !o.Embedded {
			env.Log.Warn("Asset skipped during build",
				zap.String("kind", string(o.Kind)),
				zap.String("where", o.Where),
				zap.String("reason", o.Reason))
		}
	}

	dst := filepath.Join(dstDir, slug.Make(doc.Title)+".docx")
	if !env.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("destination file '%s' already exists, use --overwrite to replace it", dst)
		}
	}
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}

	env.Log.Info("Document generated", zap.String("file", dst), zap.Int("size", len(data)))
	if env.Rpt != nil {
		env.Rpt.StoreData(filepath.Base(dst), data)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if addr := cmd.String("addr"); len(addr) > 0 {
		env.Cfg.Server.Address = addr
	}
	return server.New(ctx).Run(ctx)
}
