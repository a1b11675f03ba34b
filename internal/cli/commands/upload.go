package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wakeupnow/wakeup/internal/api"
)

// NewUploadCmd creates the admin video upload command
func NewUploadCmd(app *App) *cobra.Command {
	var title, description, theme, filePath string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a new video to the catalog (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(app, title, description, theme, filePath)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Video title")
	cmd.Flags().StringVar(&description, "description", "", "Video description")
	cmd.Flags().StringVar(&theme, "theme", "", "Video theme")
	cmd.Flags().StringVar(&filePath, "file", "", "Path to the video file")

	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("theme")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runUpload(app *App, title, description, theme, filePath string) error {
	// The gate distinguishes "log in first" from "not an admin"
	if err := app.Navigate("upload"); err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	snap := app.Sessions.Current()
	fmt.Printf("Uploading %s...\n", filepath.Base(filePath))

	uploadResp, err := app.Client.UploadVideo(snap.Token, api.UploadVideoRequest{
		Title:       title,
		Description: description,
		Theme:       theme,
		Filename:    filepath.Base(filePath),
		File:        file,
	})
	if err != nil {
		if sessionExpired(err) {
			app.ForceLogout()
			return fmt.Errorf("your session expired, please run 'wakeup login' again")
		}
		return networkHint(err)
	}

	fmt.Println("✓ Upload accepted!")
	fmt.Printf("  ID: %s\n", uploadResp.ID)
	fmt.Println("  The video is processing and will appear in the catalog when ready.")

	return nil
}
