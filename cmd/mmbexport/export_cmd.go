package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mm0-org/mmb/env"
	"github.com/mm0-org/mmb/export"
	"github.com/mm0-org/mmb/manifest"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <fixture.json>",
		Short: "Export a fixture to an MMB container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnvironment(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			res, err := export.Export(e, f)
			if err != nil {
				return err
			}
			slog.Info("exported container", "path", out, "bytes", res.Size, "digest", digestHex(res.Digest))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "out.mmb", "Output container path")
	return cmd
}

// loadEnvironment reads and applies a single fixture, producing a fresh
// Environment with nothing merged in.
func loadEnvironment(path string) (*env.Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := manifest.Load(data)
	if err != nil {
		return nil, err
	}
	e := env.New()
	if err := manifest.Apply(doc, e, path); err != nil {
		return nil, err
	}
	return e, nil
}

func digestHex(d [32]byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(d)*2)
	for i, b := range d {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0xf]
	}
	return string(out)
}
