package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tourcms/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty database with demo content",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		summary, err := seed.Run(gdb, log)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if summary.Skipped {
			fmt.Fprintln(out, "database already has content, nothing seeded")
			return nil
		}
		fmt.Fprintf(out, "seeded %d regions, %d hotels, %d activities, %d posts, %d videos, %d galleries, %d hero slides\n",
			summary.Regions, summary.Hotels, summary.Activities, summary.Posts, summary.Videos, summary.Galleries, summary.HeroSlides)
		fmt.Fprintln(out, "admin login: admin / admin123")
		return nil
	},
}
