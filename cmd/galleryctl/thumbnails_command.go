package main

import (
	"fmt"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/likes"
	"github.com/orgball2608/wedding-gallery/internal/thumbnail"
	"github.com/spf13/cobra"
)

func newThumbnailsCommand(ctx *commandContext) *cobra.Command {
	var ffmpeg string

	cmd := &cobra.Command{
		Use:   "thumbnails",
		Short: "Generate and cache posters for videos in the gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := ctx.storage()
			if err != nil {
				return err
			}

			items, err := ctx.client().ListMedia(cmd.Context(), domain.SortRecent, domain.FilterVideos)
			if err != nil {
				return err
			}

			th := likes.NewThumbnailer(thumbnail.NewFFmpegExtractor(ffmpeg), storage, ctx.logger())
			added := th.Generate(cmd.Context(), items)

			out := cmd.OutOrStdout()
			for _, item := range items {
				_, cached := th.Cached(item.ID)
				fmt.Fprintf(out, "%s\tcached=%v\n", item.ID, cached)
			}
			fmt.Fprintf(out, "Generated %d new thumbnails for %d videos\n", added, len(items))
			return nil
		},
	}
	cmd.Flags().StringVar(&ffmpeg, "ffmpeg", "ffmpeg", "Path to the ffmpeg binary")

	return cmd
}
