package main

import (
	"errors"
	"fmt"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/likes"
	"github.com/spf13/cobra"
)

func newLikeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "like <media-id>",
		Short: "Like a photo or video once as this visitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := ctx.storage()
			if err != nil {
				return err
			}

			client := ctx.client()
			out := cmd.OutOrStdout()
			controller := likes.New(likes.Opts{
				Liker:    client,
				Storage:  storage,
				Notifier: likes.NotifierFunc(func(msg string) { fmt.Fprintln(out, msg) }),
				Logger:   ctx.logger(),
			})

			items, err := client.ListMedia(cmd.Context(), domain.SortRecent, domain.FilterAll)
			if err != nil {
				return err
			}
			controller.SetMedia(items)

			id := args[0]
			count, err := controller.AttemptLike(cmd.Context(), id)
			if errors.Is(err, likes.ErrAlreadyLiked) {
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Liked %s (%d likes)\n", id, count)
			return nil
		},
	}
}
