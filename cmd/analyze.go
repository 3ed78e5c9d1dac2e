package cmd

import (
	"fmt"

	"github.com/jsphweid/harmonseq/harmony"
	"github.com/jsphweid/harmonseq/midi"
	"github.com/jsphweid/harmonseq/track"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var analyzeEighths int

func init() {
	analyzeCmd.Flags().IntVar(&analyzeEighths, "eighths", 0, "step length in eighth notes (default from config)")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.mid>",
	Short: "Prints the chord implied by every step of a midi file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(args[0])
	},
}

func analyze(path string) error {
	song, err := midi.ReadSong(path, cfg.UndoDepth)
	if err != nil {
		return err
	}
	eighths := analyzeEighths
	if eighths <= 0 {
		eighths = cfg.EighthsPerStep
	}

	a := harmony.New()
	steps, err := a.Analyze(track.All(song), eighths)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"file": path, "steps": steps, "tracks": len(song.Tracks)}).Debug("analyzed")

	for i := 0; i < steps; i++ {
		start, _ := a.Bounds(i)
		bar := song.Meter.Bar(start)
		beat := (start - song.Meter.BarClock(bar)) / song.Meter.TicksPerBeat()
		fmt.Printf("%4d.%d  %-8s %s\n", bar+1, beat+1, a.Sequence[i].Name(), a.Sequence[i])
	}
	return nil
}
