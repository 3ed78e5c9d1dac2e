package cmd

import (
	"fmt"

	"github.com/jsphweid/harmonseq/chord"
	"github.com/jsphweid/harmonseq/harmony"
	"github.com/jsphweid/harmonseq/midi"
	"github.com/jsphweid/harmonseq/sample"
	"github.com/jsphweid/harmonseq/track"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	transposeChords  []string
	transposeEighths int
	transposeOut     string
)

func init() {
	transposeCmd.Flags().StringSliceVar(&transposeChords, "chords", nil, "target progression, e.g. Dm7,G7,Cmaj7")
	transposeCmd.Flags().IntVar(&transposeEighths, "eighths", 0, "step length in eighth notes, 0 spreads the chords evenly")
	transposeCmd.Flags().StringVarP(&transposeOut, "out", "o", "out.mid", "output file")
	_ = transposeCmd.MarkFlagRequired("chords")
	rootCmd.AddCommand(transposeCmd)
}

var transposeCmd = &cobra.Command{
	Use:   "transpose <file.mid>",
	Short: "Moves the notes of a midi file onto a chord progression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transpose(args[0])
	},
}

func transpose(path string) error {
	progression, err := chord.LookupAll(transposeChords)
	if err != nil {
		return err
	}
	song, err := midi.ReadSong(path, cfg.UndoDepth)
	if err != nil {
		return err
	}

	a := harmony.New()
	a.Sequence = progression
	sel := track.All(song)
	if err := a.Validate(sel, transposeEighths); err != nil {
		return err
	}
	song.NewUndoBuffer()
	changed, err := a.Transpose(sel, transposeEighths)
	if err != nil {
		return err
	}
	if err := sample.Write(transposeOut, sel); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"steps": a.Steps(), "changed": changed, "out": transposeOut}).Info("transposed")
	fmt.Printf("moved %d notes over %d steps into %s\n", changed, a.Steps(), transposeOut)
	return nil
}
