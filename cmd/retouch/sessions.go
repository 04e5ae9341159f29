package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"photo-retouch/internal/config"
	"photo-retouch/internal/imaging"
	"photo-retouch/internal/oplog"
	"photo-retouch/internal/session"
	"photo-retouch/internal/store"
)

func openStore(cfg config.Config, log *logrus.Logger) (store.Store, error) {
	if cfg.StorePath == "" {
		log.Warn("no store_path configured; sessions will not persist")
		return store.NewMemoryStore(), nil
	}
	return store.NewSQLiteStore(cfg.StorePath, log)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <image>",
		Short: "Create an editing session for a photo",
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

			src, err := imaging.Load(args[0])
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}

			sess := session.New(args[0], src.Width(), src.Height())
			sess.Log = oplog.NewWithCapacity(cfg.UndoCapacity)
			if err := st.Save(cmd.Context(), sess); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"session": sess.ID,
				"size":    fmt.Sprintf("%dx%d", sess.Width, sess.Height),
			}).Info("session created")
			fmt.Println(sess.ID)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		Args:  cobra.NoArgs,
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

			list, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSOURCE\tSIZE\tOPS\tMODIFIED")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%s\n",
					s.ID, s.SourceRef, s.Width, s.Height, s.Operations,
					s.ModifiedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <session-id>",
		Short: "Show a session's metadata and edit log",
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

			fmt.Printf("Session:  %s\n", sess.ID)
			fmt.Printf("Source:   %s (%dx%d)\n", sess.SourceRef, sess.Width, sess.Height)
			fmt.Printf("Created:  %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("Modified: %s\n", sess.ModifiedAt.Format("2006-01-02 15:04:05"))
			if sess.Detections != nil {
				fmt.Printf("Faces:    %d\n", len(sess.Detections.Faces))
			}

			ops := sess.Log.Operations()
			fmt.Printf("Operations (%d):\n", len(ops))
			for i, op := range ops {
				data, err := oplog.EncodeOperation(op)
				if err != nil {
					return err
				}
				fmt.Printf("  %2d %s\n", i, data)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a stored session",
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
			return st.Delete(context.Background(), args[0])
		},
	}
}
