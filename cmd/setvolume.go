package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/orthoctl/orthoctl/config"
	"github.com/orthoctl/orthoctl/core/media"
	"github.com/orthoctl/orthoctl/infra/logger"
	"github.com/orthoctl/orthoctl/infra/spotify"
)

var setVolumeCmd = &cobra.Command{
	Use:   "set-volume <position>",
	Short: "Set the playback volume once and exit",
	Long:  "Sends a single volume call for a knob position between 0 and 127, bypassing the dispatch engine.",
	Args:  cobra.ExactArgs(1),
	RunE:  setVolume,
}

func init() {
	rootCmd.AddCommand(setVolumeCmd)
}

func setVolume(cmd *cobra.Command, args []string) error {
	value, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("position must be an integer: %w", err)
	}
	if value < 0 || value > media.MaxPosition {
		return fmt.Errorf("position %d out of range 0..%d", value, media.MaxPosition)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("set-volume")
	client, err := spotify.New(cfg.Spotify)
	if err != nil {
		return fmt.Errorf("spotify client: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	outcome, err := client.SetVolume(ctx, value)
	if err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	if outcome != media.Accepted {
		return fmt.Errorf("volume call not accepted: %s", outcome)
	}
	logg.Infof("volume set to %d%%", media.PercentFromPosition(value))
	return nil
}
