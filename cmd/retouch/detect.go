package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"photo-retouch/internal/detect"
	"photo-retouch/internal/imaging"
)

func newDetectCmd() *cobra.Command {
	var cascade string

	cmd := &cobra.Command{
		Use:   "detect <session-id>",
		Short: "Run face detection on a session's source and cache the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			if cascade == "" {
				cascade = cfg.CascadePath
			}
			if cascade == "" {
				return fmt.Errorf("no cascade file: set --cascade or cascade_path in the config")
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

			src, err := imaging.Load(filepath.Join(cfg.AssetRoot, sess.SourceRef))
			if err != nil {
				return fmt.Errorf("loading source %s: %w", sess.SourceRef, err)
			}

			detector, err := detect.NewCascadeDetector(cascade)
			if err != nil {
				return err
			}
			defer detector.Close()

			detections, err := detector.Detect(cmd.Context(), src.Image)
			if err != nil {
				return fmt.Errorf("detecting faces: %w", err)
			}

			sess.Detections = detections
			sess.Touch()
			if err := st.Save(cmd.Context(), sess); err != nil {
				return err
			}

			log.WithField("session", sess.ID).Infof("cached %d faces", len(detections.Faces))
			for i, face := range detections.Faces {
				fmt.Printf("face %d: bounds (%.0f,%.0f) %.0fx%.0f confidence %.2f\n",
					i, face.Bounds.X, face.Bounds.Y, face.Bounds.Width, face.Bounds.Height,
					face.Confidence)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cascade, "cascade", "", "Haar cascade XML file for face detection")
	return cmd
}
