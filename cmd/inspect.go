package cmd

import (
	"fmt"

	"github.com/jsphweid/harmonseq/chord"
	"github.com/jsphweid/harmonseq/midi"
	"github.com/jsphweid/harmonseq/model"
	"github.com/spf13/cobra"
)

var (
	inspectFrom   int
	inspectTo     int
	inspectChords bool
)

func init() {
	inspectCmd.Flags().IntVar(&inspectFrom, "from", 0, "first clock")
	inspectCmd.Flags().IntVar(&inspectTo, "to", 0, "clock after the last event (0 is the end)")
	inspectCmd.Flags().BoolVar(&inspectChords, "chords", false, "print sounding chords instead of events")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects the events of a midi file",
	Long:  `Inspects the events of a midi file, track by track`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	song, err := midi.ReadSong(path, cfg.UndoDepth)
	if err != nil {
		return err
	}
	to := inspectTo
	if to <= inspectFrom {
		to = song.LastClock() + 1
	}

	fmt.Printf("meter: %s, %d ticks per quarter\n", song.Meter, song.Meter.TicksPerQuarter)
	for i, t := range song.Tracks {
		events := t.Events(inspectFrom, to)
		fmt.Printf("track %d %q channel %d: %d events\n", i, t.Name, t.Channel, len(events))
		if inspectChords {
			printChords(chord.GetChords(events))
			continue
		}
		for _, e := range events {
			fmt.Println(midi.Describe(e))
		}
	}
	return nil
}

func printChords(chords []model.Chord) {
	for _, c := range chords {
		classes := chord.Classes(c)
		fmt.Printf("%6d %-12s %s\n", c.Clock, chord.CreateChordKey(c.Notes), classes)
	}
}
