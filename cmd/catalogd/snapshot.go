package main

import (
	"fmt"
	"io"
	"resourcecatalog/internal/core"
	"resourcecatalog/pkg/domain"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect persisted catalog snapshots",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print a summary of the persisted snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			store, err := core.OpenSnapshotStore(cmd.Context(), cfg.StorageConfig())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			snapshot, ok, err := store.LoadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no snapshot saved")
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snapshot)
		},
	})
	return cmd
}

func printSnapshot(w io.Writer, s domain.Snapshot) error {
	if _, err := fmt.Fprintf(w, "resources: %d\nnext_id: %d\n", len(s.Resources), s.NextID); err != nil {
		return err
	}
	for _, c := range domain.Categories {
		if _, err := fmt.Fprintf(w, "category %s: %d\n", c, len(s.CategoryIndex[c])); err != nil {
			return err
		}
	}
	for _, admin := range s.SortedAdmins() {
		if _, err := fmt.Fprintf(w, "admin: %s\n", admin); err != nil {
			return err
		}
	}
	return nil
}
