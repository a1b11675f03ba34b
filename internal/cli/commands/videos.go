package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVideosCmd creates the videos listing command
func NewVideosCmd(app *App) *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Browse the video catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVideos(app, theme)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Filter by theme (e.g. Rotina, Bem-estar, Fitness, Saude)")

	return cmd
}

func runVideos(app *App, theme string) error {
	if err := app.Navigate("videos"); err != nil {
		return err
	}

	snap := app.Sessions.Current()
	videos, err := app.Client.ListVideos(snap.Token, theme)
	if err != nil {
		if sessionExpired(err) {
			app.ForceLogout()
			return fmt.Errorf("your session expired, please run 'wakeup login' again")
		}
		return networkHint(err)
	}

	if len(videos) == 0 {
		fmt.Println("No videos found.")
		return nil
	}

	for _, v := range videos {
		marker := " "
		if v.Locked {
			marker = "🔒"
		}
		fmt.Printf("%s %-26s  %-12s %8s  %s\n", marker, v.ID, v.Theme, v.Duration, v.Title)
	}
	fmt.Printf("\n%d video(s). Locked entries need a higher plan — see 'wakeup plans'.\n", len(videos))

	return nil
}

// NewWatchCmd creates the single-video command
func NewWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <video-id>",
		Short: "Get the stream URL for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(app, args[0])
		},
	}
}

func runWatch(app *App, videoID string) error {
	if err := app.Navigate("watch"); err != nil {
		return err
	}

	snap := app.Sessions.Current()
	video, err := app.Client.GetVideo(snap.Token, videoID)
	if err != nil {
		if sessionExpired(err) {
			app.ForceLogout()
			return fmt.Errorf("your session expired, please run 'wakeup login' again")
		}
		return networkHint(err)
	}

	fmt.Printf("%s (%s, %s)\n", video.Title, video.Theme, video.Duration)
	if video.Description != "" {
		fmt.Println(video.Description)
	}

	if video.Locked {
		fmt.Println("\nThis video is locked for your plan. See 'wakeup plans' to upgrade.")
		return nil
	}

	fmt.Printf("\nStream: %s\n", video.URL)
	return nil
}
