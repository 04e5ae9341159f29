package main

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"photo-retouch/internal/render"
	"photo-retouch/internal/store"
)

func newExportCmd() *cobra.Command {
	var output string
	var quality int

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Render a session's edits at full resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			st, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			sess, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			assets := store.NewFileAssets(cfg.AssetRoot)
			pipeline := render.New(assets, log, cfg.PreviewMaxDim)
			res, err := pipeline.RenderExport(cmd.Context(), sess)
			if err != nil {
				return fmt.Errorf("rendering session %s: %w", sess.ID, err)
			}
			for _, w := range res.Warnings {
				log.WithFields(logrus.Fields{
					"index": w.Index,
					"kind":  w.Kind,
				}).Warnf("operation skipped: %s", w.Reason)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			switch strings.ToLower(filepath.Ext(output)) {
			case ".jpg", ".jpeg":
				err = jpeg.Encode(f, res.Image, &jpeg.Options{Quality: quality})
			default:
				err = png.Encode(f, res.Image)
			}
			if err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			log.WithFields(logrus.Fields{
				"session": sess.ID,
				"output":  output,
				"skipped": len(res.Warnings),
			}).Info("export complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "export.png", "output image path (.png or .jpg)")
	cmd.Flags().IntVar(&quality, "quality", 92, "JPEG quality")
	return cmd
}
